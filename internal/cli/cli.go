package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sheetcalc/pkg/cache"
	"github.com/matzehuels/sheetcalc/pkg/sheet"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "sheetcalc"

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

	// caseSensitive disables upper-casing of cell names, so that a1 and
	// A1 are different cells.
	caseSensitive bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// storeOptions returns the options for every sheet the CLI creates.
func (c *CLI) storeOptions() []sheet.Option {
	opts := []sheet.Option{sheet.WithLogger(c.Logger)}
	if !c.caseSensitive {
		opts = append(opts, sheet.WithNormalizer(strings.ToUpper))
	}
	return opts
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache opens the CLI result cache. Caching degrades to a no-op when the
// cache directory cannot be determined.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return cache.Observed(c), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir is $XDG_CACHE_HOME/sheetcalc, or ~/.cache/sheetcalc.
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// dataDir is $XDG_DATA_HOME/sheetcalc, or ~/.local/share/sheetcalc.
func dataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// xdgDir resolves the application directory below the base named by env,
// falling back to a path relative to the home directory.
func xdgDir(env string, fallback ...string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...), nil
}
