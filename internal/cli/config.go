package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/sheetcalc/pkg/cache"
	"github.com/matzehuels/sheetcalc/pkg/errors"
)

// Storage and cache backend names.
const (
	backendMemory = "memory"
	backendFile   = "file"
	backendMongo  = "mongo"
	backendNone   = "none"
	backendRedis  = "redis"
)

// serveConfig is the configuration of the serve command.
//
//	[server]
//	addr = ":8080"
//	metrics = true
//
//	[storage]
//	backend = "file"        # memory, file, mongo
//	dir = "/var/lib/sheetcalc"
//
//	[cache]
//	backend = "redis"       # none, file, redis
//	redis_addr = "localhost:6379"
//	ttl = "24h"
type serveConfig struct {
	Server  serverConfig  `toml:"server"`
	Storage storageConfig `toml:"storage"`
	Cache   cacheConfig   `toml:"cache"`
}

type serverConfig struct {
	Addr    string `toml:"addr"`
	Metrics bool   `toml:"metrics"`
}

type storageConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

type cacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	TTL           string `toml:"ttl"`
}

// defaultServeConfig returns the built-in defaults.
func defaultServeConfig() serveConfig {
	return serveConfig{
		Server:  serverConfig{Addr: ":8080", Metrics: true},
		Storage: storageConfig{Backend: backendFile},
		Cache:   cacheConfig{Backend: backendFile, TTL: cache.TTLGraph.String()},
	}
}

// loadServeConfig builds the configuration from defaults, SHEETCALC_*
// environment variables and the TOML file at path, each overriding the
// previous. An empty path skips the file.
func loadServeConfig(path string) (serveConfig, error) {
	cfg := defaultServeConfig()
	applyEnv(&cfg, os.LookupEnv)

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, errors.New(errors.ErrCodeInvalidFormat, "config %s: unknown key %s", path, undecoded[0])
		}
	}
	return cfg, nil
}

// applyEnv overrides cfg fields from SHEETCALC_* variables.
func applyEnv(cfg *serveConfig, lookup func(string) (string, bool)) {
	vars := []struct {
		name string
		dst  *string
	}{
		{"SHEETCALC_ADDR", &cfg.Server.Addr},
		{"SHEETCALC_STORAGE", &cfg.Storage.Backend},
		{"SHEETCALC_STORAGE_DIR", &cfg.Storage.Dir},
		{"SHEETCALC_MONGO_URI", &cfg.Storage.MongoURI},
		{"SHEETCALC_MONGO_DATABASE", &cfg.Storage.Database},
		{"SHEETCALC_CACHE", &cfg.Cache.Backend},
		{"SHEETCALC_CACHE_DIR", &cfg.Cache.Dir},
		{"SHEETCALC_REDIS_ADDR", &cfg.Cache.RedisAddr},
		{"SHEETCALC_REDIS_PASSWORD", &cfg.Cache.RedisPassword},
		{"SHEETCALC_CACHE_TTL", &cfg.Cache.TTL},
	}
	for _, v := range vars {
		if val, ok := lookup(v.name); ok && val != "" {
			*v.dst = val
		}
	}
	if val, ok := lookup("SHEETCALC_METRICS"); ok {
		cfg.Server.Metrics = val != "0" && val != "false"
	}
}

// validate checks backend names and fills directory defaults.
func (cfg *serveConfig) validate() error {
	switch cfg.Storage.Backend {
	case backendMemory, backendMongo:
	case backendFile:
		if cfg.Storage.Dir == "" {
			dir, err := dataDir()
			if err != nil {
				return fmt.Errorf("get data dir: %w", err)
			}
			cfg.Storage.Dir = filepath.Join(dir, "workbooks")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown storage backend %q (want memory, file or mongo)", cfg.Storage.Backend)
	}

	switch cfg.Cache.Backend {
	case backendNone, backendRedis:
	case backendFile:
		if cfg.Cache.Dir == "" {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			cfg.Cache.Dir = dir
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want none, file or redis)", cfg.Cache.Backend)
	}

	if _, err := cfg.cacheTTL(); err != nil {
		return err
	}
	return nil
}

// cacheTTL parses the configured time-to-live of rendered graphs.
func (cfg *serveConfig) cacheTTL() (time.Duration, error) {
	if cfg.Cache.TTL == "" {
		return cache.TTLGraph, nil
	}
	d, err := time.ParseDuration(cfg.Cache.TTL)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid cache ttl %q", cfg.Cache.TTL)
	}
	return d, nil
}
