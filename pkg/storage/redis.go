package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	ferrors "github.com/matzehuels/floorcad/pkg/errors"
)

const drawingKeyPrefix = "drawing:"

// DefaultRedisTTL is how long artifacts live in Redis when no TTL is set.
const DefaultRedisTTL = 24 * time.Hour

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Client *redis.Client
	// TTL applies to every artifact. Zero means DefaultRedisTTL; a negative
	// value disables expiry.
	TTL time.Duration
}

// Validate checks the configuration.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return ferrors.New(ferrors.ErrCodeInvalidConfig, "redis store config cannot be nil")
	}
	if cfg.Client == nil {
		return ferrors.New(ferrors.ErrCodeInvalidConfig, "redis client cannot be nil")
	}
	return nil
}

// RedisStore keeps each artifact under drawing:{id}:{format} and the set of
// stored formats under drawing:{id}:formats.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore returns a store using cfg.Client. Close closes the client.
func NewRedisStore(cfg *RedisConfig) (*RedisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	switch {
	case ttl == 0:
		ttl = DefaultRedisTTL
	case ttl < 0:
		ttl = 0
	}
	return &RedisStore{client: cfg.Client, ttl: ttl, now: time.Now}, nil
}

// ArtifactKey returns the Redis key of one artifact.
func ArtifactKey(id, format string) string {
	return drawingKeyPrefix + id + ":" + format
}

func formatsKey(id string) string {
	return drawingKeyPrefix + id + ":formats"
}

func (s *RedisStore) Put(ctx context.Context, a *Artifact) error {
	if err := validateArtifact(a); err != nil {
		return err
	}
	stored := *a
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now().UTC()
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return sinkFailure(err, "marshal artifact")
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, ArtifactKey(a.ID, a.Format), data, s.ttl)
	pipe.SAdd(ctx, formatsKey(a.ID), a.Format)
	if s.ttl > 0 {
		pipe.Expire(ctx, formatsKey(a.ID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return redisFailure(err, "store %s artifact for drawing %q", a.Format, a.ID)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id, format string) (*Artifact, error) {
	if err := validateKey(id, format); err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, ArtifactKey(id, format)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id, format)
	}
	if err != nil {
		return nil, redisFailure(err, "load %s artifact for drawing %q", format, id)
	}

	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, sinkFailure(err, "decode %s artifact for drawing %q", format, id)
	}
	return &a, nil
}

func (s *RedisStore) List(ctx context.Context, id string) ([]string, error) {
	if err := ferrors.ValidateDrawingID(id); err != nil {
		return nil, err
	}
	members, err := s.client.SMembers(ctx, formatsKey(id)).Result()
	if err != nil {
		return nil, redisFailure(err, "list artifacts for drawing %q", id)
	}

	// The index can outlive individual artifacts by up to one TTL.
	formats := []string{}
	for _, f := range members {
		n, err := s.client.Exists(ctx, ArtifactKey(id, f)).Result()
		if err != nil {
			return nil, redisFailure(err, "list artifacts for drawing %q", id)
		}
		if n > 0 {
			formats = append(formats, f)
		}
	}
	sort.Strings(formats)
	return formats, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := ferrors.ValidateDrawingID(id); err != nil {
		return err
	}
	members, err := s.client.SMembers(ctx, formatsKey(id)).Result()
	if err != nil {
		return redisFailure(err, "delete drawing %q", id)
	}
	keys := []string{formatsKey(id)}
	for _, f := range members {
		keys = append(keys, ArtifactKey(id, f))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return redisFailure(err, "delete drawing %q", id)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

// redisFailure marks network failures retryable. A closed client is final.
func redisFailure(err error, format string, args ...any) error {
	transient := isNetworkError(err) && !errors.Is(err, redis.ErrClosed)
	return backendFailure(err, transient, format, args...)
}

var _ Store = (*RedisStore)(nil)
