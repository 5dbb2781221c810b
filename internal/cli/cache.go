package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sheetcalc/pkg/cache"
	"github.com/matzehuels/sheetcalc/pkg/errors"
)

var cacheKinds = []string{cache.KindValues, cache.KindGraph}

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the evaluation and graph cache",
	}

	var kind string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached values and graphs",
		Example: `  sheetcalc cache clear
  sheetcalc cache clear --kind graph`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(kind)
		},
	}
	clearCmd.Flags().StringVar(&kind, "kind", "", "only clear one kind of entry: values, graph")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), dir)
			return err
		},
	}

	cmd.AddCommand(clearCmd, pathCmd)
	return cmd
}

func runCacheClear(kind string) error {
	if kind != "" && !slices.Contains(cacheKinds, kind) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache kind %q (want values or graph)", kind)
	}
	dir, err := cacheDir()
	if err != nil {
		return err
	}
	if kind != "" {
		dir = filepath.Join(dir, kind)
	}

	n, err := clearDir(dir)
	switch {
	case err != nil:
		return err
	case n == 0:
		printInfo("Cache is empty")
	default:
		printSuccess("Cleared %d cached entries", n)
		printDetail("Directory: %s", dir)
	}
	return nil
}

// clearDir deletes the files below dir, prunes the directories it empties
// and reports how many files went. A missing dir counts as empty.
func clearDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if !e.IsDir() {
			if os.Remove(p) == nil {
				removed++
			}
			continue
		}
		n, err := clearDir(p)
		removed += n
		if err != nil {
			return removed, err
		}
		_ = os.Remove(p)
	}
	return removed, nil
}
