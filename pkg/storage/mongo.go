package storage

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	ferrors "github.com/matzehuels/floorcad/pkg/errors"
)

// Defaults for MongoConfig.
const (
	DefaultMongoDatabase   = "floorcad"
	DefaultMongoCollection = "drawings"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Validate checks the configuration and fills defaults.
func (cfg *MongoConfig) Validate() error {
	if cfg == nil {
		return ferrors.New(ferrors.ErrCodeInvalidConfig, "mongo store config cannot be nil")
	}
	if cfg.URI == "" {
		return ferrors.New(ferrors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return nil
}

// MongoStore keeps one document per drawing id and format.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoStore connects to MongoDB and ensures the (id, format) index.
func NewMongoStore(ctx context.Context, cfg *MongoConfig) (*MongoStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, sinkFailure(err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, sinkFailure(err, "ping mongo")
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}, {Key: "format", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, sinkFailure(err, "create mongo index")
	}
	return &MongoStore{client: client, coll: coll, now: time.Now}, nil
}

// artifactFilter selects one artifact document.
func artifactFilter(id, format string) bson.D {
	return bson.D{{Key: "id", Value: id}, {Key: "format", Value: format}}
}

func (s *MongoStore) Put(ctx context.Context, a *Artifact) error {
	if err := validateArtifact(a); err != nil {
		return err
	}
	stored := *a
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now().UTC()
	}
	_, err := s.coll.ReplaceOne(ctx, artifactFilter(a.ID, a.Format), stored,
		options.Replace().SetUpsert(true))
	if err != nil {
		return mongoFailure(err, "store %s artifact for drawing %q", a.Format, a.ID)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id, format string) (*Artifact, error) {
	if err := validateKey(id, format); err != nil {
		return nil, err
	}
	var a Artifact
	err := s.coll.FindOne(ctx, artifactFilter(id, format)).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id, format)
	}
	if err != nil {
		return nil, mongoFailure(err, "load %s artifact for drawing %q", format, id)
	}
	return &a, nil
}

func (s *MongoStore) List(ctx context.Context, id string) ([]string, error) {
	if err := ferrors.ValidateDrawingID(id); err != nil {
		return nil, err
	}
	values, err := s.coll.Distinct(ctx, "format", bson.D{{Key: "id", Value: id}})
	if err != nil {
		return nil, mongoFailure(err, "list artifacts for drawing %q", id)
	}
	formats := make([]string, 0, len(values))
	for _, v := range values {
		if f, ok := v.(string); ok {
			formats = append(formats, f)
		}
	}
	sort.Strings(formats)
	return formats, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := ferrors.ValidateDrawingID(id); err != nil {
		return err
	}
	if _, err := s.coll.DeleteMany(ctx, bson.D{{Key: "id", Value: id}}); err != nil {
		return mongoFailure(err, "delete drawing %q", id)
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)

// mongoFailure marks network errors and server timeouts retryable.
func mongoFailure(err error, format string, args ...any) error {
	transient := mongo.IsNetworkError(err) || mongo.IsTimeout(err) || isNetworkError(err)
	return backendFailure(err, transient, format, args...)
}
