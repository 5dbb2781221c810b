package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sheetcalc/internal/server"
	"github.com/matzehuels/sheetcalc/pkg/cache"
	"github.com/matzehuels/sheetcalc/pkg/observability"
	"github.com/matzehuels/sheetcalc/pkg/observability/prom"
	"github.com/matzehuels/sheetcalc/pkg/storage"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		flags      serveConfig
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve workbooks over HTTP",
		Long: `Run the workbook HTTP API.

Configuration is read from built-in defaults, then SHEETCALC_* environment
variables, then the --config TOML file, then command-line flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = flags.Server.Addr
			}
			if cmd.Flags().Changed("storage") {
				cfg.Storage.Backend = flags.Storage.Backend
			}
			if cmd.Flags().Changed("cache") {
				cfg.Cache.Backend = flags.Cache.Backend
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "TOML configuration file")
	cmd.Flags().StringVar(&flags.Server.Addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&flags.Storage.Backend, "storage", "", "workbook storage: memory, file, mongo")
	cmd.Flags().StringVar(&flags.Cache.Backend, "cache", "", "graph cache: none, file, redis")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg serveConfig) error {
	logger := loggerFromContext(ctx)

	repo, err := openRepository(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer repo.Close()

	ch, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer ch.Close()

	ttl, _ := cfg.cacheTTL()
	srvCfg := server.Config{
		Repo:         repo,
		Cache:        cache.Observed(ch),
		Keyer:        cache.NewScopedKeyer(cache.NewDefaultKeyer(), appName+":"),
		GraphTTL:     ttl,
		StoreOptions: c.storeOptions(),
		Logger:       logger,
	}
	if cfg.Server.Metrics {
		srvCfg.Metrics = newMetricsHandler()
		defer observability.Reset()
	}

	printInfo("Serving on %s", cfg.Server.Addr)
	printDetail("storage: %s · cache: %s", cfg.Storage.Backend, cfg.Cache.Backend)

	if err := server.New(srvCfg).Run(ctx, cfg.Server.Addr); err != nil {
		return err
	}
	return ctx.Err()
}

// newMetricsHandler installs Prometheus hooks and returns their handler.
func newMetricsHandler() http.Handler {
	m := prom.New(prometheus.NewRegistry())
	m.Register()
	return m.Handler()
}

// openRepository creates the configured workbook storage backend.
func openRepository(ctx context.Context, cfg storageConfig) (storage.Repository, error) {
	switch cfg.Backend {
	case backendMemory:
		return storage.NewMemoryStore(), nil
	case backendMongo:
		return storage.NewMongoStore(ctx, storage.MongoOptions{URI: cfg.MongoURI, Database: cfg.Database})
	case backendFile:
		return storage.NewFileStore(cfg.Dir)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// openCache creates the configured graph cache backend.
func openCache(ctx context.Context, cfg cacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	case backendFile:
		return cache.NewFileCache(cfg.Dir)
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}
