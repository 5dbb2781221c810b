package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/sheetcalc/pkg/cache"
	"github.com/matzehuels/sheetcalc/pkg/errors"
)

func clearServeEnv(t *testing.T) {
	for _, name := range []string{
		"SHEETCALC_ADDR", "SHEETCALC_STORAGE", "SHEETCALC_STORAGE_DIR", "SHEETCALC_MONGO_URI",
		"SHEETCALC_MONGO_DATABASE", "SHEETCALC_CACHE", "SHEETCALC_CACHE_DIR", "SHEETCALC_REDIS_ADDR",
		"SHEETCALC_REDIS_PASSWORD", "SHEETCALC_CACHE_TTL", "SHEETCALC_METRICS",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadServeConfigDefaults(t *testing.T) {
	clearServeEnv(t)
	cfg, err := loadServeConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != defaultServeConfig() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SHEETCALC_ADDR":      ":9000",
		"SHEETCALC_STORAGE":   "mongo",
		"SHEETCALC_MONGO_URI": "mongodb://db:27017",
		"SHEETCALC_CACHE":     "redis",
		"SHEETCALC_METRICS":   "false",
	}
	cfg := defaultServeConfig()
	applyEnv(&cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	tests := []struct {
		name, got, want string
	}{
		{"addr", cfg.Server.Addr, ":9000"},
		{"storage", cfg.Storage.Backend, "mongo"},
		{"mongo uri", cfg.Storage.MongoURI, "mongodb://db:27017"},
		{"cache", cfg.Cache.Backend, "redis"},
		{"ttl", cfg.Cache.TTL, cache.TTLGraph.String()},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
	if cfg.Server.Metrics {
		t.Error("SHEETCALC_METRICS=false should disable metrics")
	}
}

func TestLoadServeConfigFileOverridesEnv(t *testing.T) {
	clearServeEnv(t)
	t.Setenv("SHEETCALC_ADDR", ":9000")
	t.Setenv("SHEETCALC_CACHE", "none")

	path := filepath.Join(t.TempDir(), "sheetcalc.toml")
	data := `
[server]
addr = ":7000"

[storage]
backend = "memory"

[cache]
ttl = "1h"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadServeConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("addr = %q, want file value", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("cache = %q, want env value", cfg.Cache.Backend)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("storage = %q", cfg.Storage.Backend)
	}
	if ttl, err := cfg.cacheTTL(); err != nil || ttl != time.Hour {
		t.Errorf("cacheTTL() = %v, %v", ttl, err)
	}
}

func TestLoadServeConfigErrors(t *testing.T) {
	clearServeEnv(t)
	dir := t.TempDir()
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[server\naddr = 1"},
		{"unknown key", "[server]\nport = 80\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".toml")
			os.WriteFile(path, []byte(tt.data), 0644)
			if _, err := loadServeConfig(path); !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error = %v, want %v", err, errors.ErrCodeInvalidFormat)
			}
		})
	}
	if _, err := loadServeConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("missing config file should fail")
	}
}

func TestServeConfigValidate(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CACHE_HOME", "/cache")

	cfg := defaultServeConfig()
	if err := cfg.validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Dir != filepath.Join("/data", appName, "workbooks") {
		t.Errorf("storage dir = %q", cfg.Storage.Dir)
	}
	if cfg.Cache.Dir != filepath.Join("/cache", appName) {
		t.Errorf("cache dir = %q", cfg.Cache.Dir)
	}

	tests := []struct {
		name   string
		mutate func(*serveConfig)
	}{
		{"storage", func(c *serveConfig) { c.Storage.Backend = "sqlite" }},
		{"cache", func(c *serveConfig) { c.Cache.Backend = "memcached" }},
		{"ttl", func(c *serveConfig) { c.Cache.TTL = "soon" }},
		{"negative ttl", func(c *serveConfig) { c.Cache.TTL = "-1h" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultServeConfig()
			tt.mutate(&cfg)
			if err := cfg.validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("validate() = %v, want %v", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestOpenBackends(t *testing.T) {
	ctx := testContext(testCLI())
	repo, err := openRepository(ctx, storageConfig{Backend: backendFile, Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	repo.Close()

	if _, err := openRepository(ctx, storageConfig{Backend: backendMongo}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("mongo without URI error = %v", err)
	}

	c, err := openCache(ctx, cacheConfig{Backend: backendNone})
	if err != nil {
		t.Fatal(err)
	}
	c.Close()
}
