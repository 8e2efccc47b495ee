// Package cli implements the floorcad command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/floorcad/pkg/cache"
	"github.com/matzehuels/floorcad/pkg/config"
	"github.com/matzehuels/floorcad/pkg/pipeline"
	"github.com/matzehuels/floorcad/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "floorcad"

	// defaultConfigFile is read from the working directory when --config
	// is not given.
	defaultConfigFile = "floorcad.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the persistent --config flag.
	configPath string
	// cfg is loaded once per invocation.
	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// config returns the loaded configuration.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := c.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	cfg, err := config.Load(config.LoadOptions{Path: path})
	if err != nil {
		return nil, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner. A nil store disables persistence.
func (c *CLI) newRunner(cfg *config.Config, noCache bool, store storage.Store) (*pipeline.Runner, error) {
	ch, err := c.newCache(cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, store, c.Logger), nil
}

func (c *CLI) newCache(cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.CacheRedisAddr()})
		rc, err := cache.NewRedisCache(&cache.RedisConfig{Client: client, Prefix: cfg.Cache.Prefix})
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return ownedRedisCache{RedisCache: rc, client: client}, nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			c.Logger.Debug("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// ownedRedisCache closes the client it was built with.
type ownedRedisCache struct {
	*cache.RedisCache
	client *redis.Client
}

func (o ownedRedisCache) Close() error { return o.client.Close() }

// openStore opens the configured artifact store, with dir overriding the
// file backend's directory.
func openStore(ctx context.Context, cfg *config.Config, dir string) (storage.Store, error) {
	opts := cfg.StorageOptions()
	if dir != "" {
		opts.Backend = storage.BackendFile
		opts.Dir = dir
	}
	store, err := storage.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", opts.Backend, err)
	}
	return store, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/floorcad/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
