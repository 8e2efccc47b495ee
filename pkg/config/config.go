// Package config loads floorcad settings.
//
// Settings come from three layers, later layers winning:
//
//  1. a TOML file (floorcad.toml)
//  2. a .env file in the working directory
//  3. FLOORCAD_* process environment variables
//
// Command-line flags are applied on top by the CLI.
//
//	[compile]
//	text_height = 10
//	strict_openings = false
//	formats = ["dxf", "json"]
//
//	[storage]
//	backend = "file"          # file, memory, redis, mongo, sqlite
//	dir = "output"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[cache]
//	backend = "file"          # file, redis, none
//
//	[server]
//	addr = ":8000"
//	allowed_origins = ["http://localhost:3000"]
package config

import (
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/floorcad/pkg/errors"
	"github.com/matzehuels/floorcad/pkg/pipeline"
	"github.com/matzehuels/floorcad/pkg/storage"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FLOORCAD_"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the complete floorcad configuration.
type Config struct {
	Compile CompileConfig `toml:"compile"`
	Storage StorageConfig `toml:"storage"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
}

type CompileConfig struct {
	TextHeight     float64 `toml:"text_height"`
	StrictOpenings bool    `toml:"strict_openings"`
	// Formats overrides the command default: dxf for compile, dxf and
	// json for serve.
	Formats []string `toml:"formats"`
	// Precision is unset unless the file names it; 0 is a valid value.
	Precision *int `toml:"precision"`
}

type StorageConfig struct {
	Backend    string   `toml:"backend"`
	Dir        string   `toml:"dir"`
	RedisAddr  string   `toml:"redis_addr"`
	MongoURI   string   `toml:"mongo_uri"`
	SQLitePath string   `toml:"sqlite_path"`
	TTL        Duration `toml:"ttl"`
}

type CacheConfig struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"` // empty means the user cache dir
	RedisAddr string `toml:"redis_addr"`
	Prefix    string `toml:"prefix"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	// StoreSVG adds an SVG preview to every compiled drawing.
	StoreSVG bool `toml:"store_svg"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Compile: CompileConfig{
			TextHeight: 10,
		},
		Storage: StorageConfig{
			Backend: storage.BackendFile,
			Dir:     "output",
			TTL:     Duration{storage.DefaultRedisTTL},
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			Prefix:  "floorcad:cache:",
		},
		Server: ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
}

// LoadOptions says where Load looks.
type LoadOptions struct {
	// Path is the TOML file. Empty skips the file; a missing explicit file
	// is an error.
	Path string
	// EnvFile is the dotenv file. Empty means ".env"; a missing file is
	// ignored.
	EnvFile string
	// LookupEnv reads the process environment; nil means os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds the configuration from defaults, the TOML file, the dotenv
// file and the environment, then validates it.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.Path != "" {
		md, err := toml.DecodeFile(opts.Path, cfg)
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s not found", opts.Path)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", opts.Path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", opts.Path, undecoded[0].String())
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", envFile)
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(name string) (string, bool) {
		key := EnvPrefix + name
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(env func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := env(name); ok {
			*dst = v
		}
	}
	list := func(name string, dst *[]string) {
		if v, ok := env(name); ok {
			*dst = splitList(v)
		}
	}

	if v, ok := env("TEXT_HEIGHT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sTEXT_HEIGHT", EnvPrefix)
		}
		c.Compile.TextHeight = f
	}
	if v, ok := env("STRICT_OPENINGS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sSTRICT_OPENINGS", EnvPrefix)
		}
		c.Compile.StrictOpenings = b
	}
	list("FORMATS", &c.Compile.Formats)

	str("STORAGE_BACKEND", &c.Storage.Backend)
	str("STORAGE_DIR", &c.Storage.Dir)
	str("REDIS_ADDR", &c.Storage.RedisAddr)
	str("MONGO_URI", &c.Storage.MongoURI)
	str("SQLITE_PATH", &c.Storage.SQLitePath)
	if v, ok := env("STORAGE_TTL"); ok {
		if err := c.Storage.TTL.UnmarshalText([]byte(v)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sSTORAGE_TTL", EnvPrefix)
		}
	}

	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("CACHE_REDIS_ADDR", &c.Cache.RedisAddr)

	str("ADDR", &c.Server.Addr)
	list("ALLOWED_ORIGINS", &c.Server.AllowedOrigins)
	return nil
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.Compile.TextHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "compile.text_height must be positive, got %g", c.Compile.TextHeight)
	}
	if err := pipeline.ValidateFormats(c.Compile.Formats); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "compile.formats")
	}

	switch c.Storage.Backend {
	case storage.BackendFile:
		if c.Storage.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "storage.dir is required for the file backend")
		}
	case storage.BackendMemory:
	case storage.BackendRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "storage.redis_addr is required for the redis backend")
		}
	case storage.BackendMongo:
		if c.Storage.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "storage.mongo_uri is required for the mongo backend")
		}
	case storage.BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "storage.sqlite_path is required for the sqlite backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown storage.backend %q", c.Storage.Backend)
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" && c.Storage.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis cache")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache.backend %q", c.Cache.Backend)
	}

	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr is required")
	}
	return nil
}

// StorageOptions converts the storage section for storage.Open.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:    c.Storage.Backend,
		Dir:        c.Storage.Dir,
		RedisAddr:  c.Storage.RedisAddr,
		MongoURI:   c.Storage.MongoURI,
		SQLitePath: c.Storage.SQLitePath,
		TTL:        c.Storage.TTL.Duration,
	}
}

// CacheRedisAddr returns the cache Redis address, falling back to the
// storage one.
func (c *Config) CacheRedisAddr() string {
	if c.Cache.RedisAddr != "" {
		return c.Cache.RedisAddr
	}
	return c.Storage.RedisAddr
}

// PipelineOptions returns run options from the compile section.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Formats:        slices.Clone(c.Compile.Formats),
		TextHeight:     c.Compile.TextHeight,
		StrictOpenings: c.Compile.StrictOpenings,
		Precision:      c.Compile.Precision,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
