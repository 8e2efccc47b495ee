package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	ferrors "github.com/matzehuels/floorcad/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend    string
	Dir        string        // file
	RedisAddr  string        // redis
	MongoURI   string        // mongo
	SQLitePath string        // sqlite
	TTL        time.Duration // redis
}

// Open builds the store named by opts.Backend. An empty backend means file.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, ferrors.New(ferrors.ErrCodeInvalidConfig, "file store requires a directory")
		}
		return NewFileStore(opts.Dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, ferrors.New(ferrors.ErrCodeInvalidConfig, "redis store requires an address")
		}
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, sinkFailure(err, "connect to redis at %s", opts.RedisAddr)
		}
		return NewRedisStore(&RedisConfig{Client: client, TTL: opts.TTL})
	case BackendMongo:
		return NewMongoStore(ctx, &MongoConfig{URI: opts.MongoURI})
	case BackendSQLite:
		return OpenSQLite(ctx, opts.SQLitePath)
	}
	return nil, ferrors.New(ferrors.ErrCodeInvalidConfig, "unknown storage backend %q", opts.Backend)
}
