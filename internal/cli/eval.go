package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sheetcalc/pkg/cache"
	"github.com/matzehuels/sheetcalc/pkg/calc"
	"github.com/matzehuels/sheetcalc/pkg/sheet"
	"github.com/matzehuels/sheetcalc/pkg/workbook"
)

// evalOpts holds the command-line flags for the eval command.
type evalOpts struct {
	noCache bool     // skip the result cache
	cells   []string // print only these cells
	json    bool     // print JSON instead of a table
}

// evalCommand creates the eval command.
func (c *CLI) evalCommand() *cobra.Command {
	var opts evalOpts

	cmd := &cobra.Command{
		Use:   "eval [file]",
		Short: "Evaluate a workbook and print every cell value",
		Long: `Evaluate a workbook file and print each cell with its contents and
computed value. Results are cached by workbook content, so evaluating an
unchanged file again reads the cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEval(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().StringSliceVarP(&opts.cells, "cell", "c", nil, "only print these cells (repeatable)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")

	return cmd
}

func (c *CLI) runEval(ctx context.Context, path string, opts *evalOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	wb, err := workbook.ReadFile(path)
	if err != nil {
		return err
	}
	ch, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer ch.Close()

	rows, cached, err := c.evaluate(ctx, wb, ch)
	if err != nil {
		return err
	}
	if len(opts.cells) > 0 {
		if rows, err = c.selectRows(rows, opts.cells); err != nil {
			return err
		}
	}

	if opts.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Fprintln(stdout, StyleTitle.Render(path))
	printValueTable(rows)
	printStats(len(rows), countErrors(rows), cached)
	prog.done("evaluated workbook", "file", path, "cells", len(rows), "cached", cached)
	return nil
}

// evaluate returns the value rows of every cell in wb. Rows are read from
// ch when the workbook was evaluated before, and written to it otherwise.
func (c *CLI) evaluate(ctx context.Context, wb *workbook.Workbook, ch cache.Cache) ([]cellRow, bool, error) {
	logger := loggerFromContext(ctx)
	key := c.keyer().ValuesKey(wb.Hash())

	if data, hit, err := ch.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "err", err)
	} else if hit {
		var rows []cellRow
		if err := json.Unmarshal(data, &rows); err == nil {
			logger.Debug("values cache hit", "key", key)
			return rows, true, nil
		}
		logger.Warn("discarding unreadable cache entry", "key", key)
	}

	store, err := wb.NewStore(c.storeOptions()...)
	if err != nil {
		return nil, false, err
	}
	engine := calc.New(store, calc.WithLogger(c.Logger))
	rows := engineRows(engine, store.NonEmptyCellNames())

	if data, err := json.Marshal(rows); err == nil {
		if err := ch.Set(ctx, key, data, cache.TTLValues); err != nil {
			logger.Warn("cache write failed", "err", err)
		}
	}
	return rows, false, nil
}

// selectRows returns the rows for names, in the order given. Names of empty
// cells yield an empty row.
func (c *CLI) selectRows(rows []cellRow, names []string) ([]cellRow, error) {
	byName := make(map[string]cellRow, len(rows))
	for _, r := range rows {
		byName[r.Name] = r
	}
	probe := sheet.New(c.storeOptions()...)
	out := make([]cellRow, 0, len(names))
	for _, name := range names {
		norm, err := probe.CellName(name)
		if err != nil {
			return nil, err
		}
		r, ok := byName[norm]
		if !ok {
			r = newCellRow(norm, "", calc.Value{})
		}
		out = append(out, r)
	}
	return out, nil
}

// keyer scopes cache keys by name handling, since the same file evaluates
// differently with and without case folding.
func (c *CLI) keyer() cache.Keyer {
	if c.caseSensitive {
		return cache.NewScopedKeyer(cache.NewDefaultKeyer(), "cs:")
	}
	return cache.NewDefaultKeyer()
}

// engineRows returns the rows for names in the given order.
func engineRows(e *calc.Engine, names []string) []cellRow {
	store := e.Store()
	rows := make([]cellRow, 0, len(names))
	for _, name := range names {
		content, _ := store.Content(name)
		v, _ := e.Value(name)
		rows = append(rows, newCellRow(name, content.Raw(), v))
	}
	return rows
}

func countErrors(rows []cellRow) int {
	n := 0
	for _, r := range rows {
		if r.Kind == calc.ValueError.String() {
			n++
		}
	}
	return n
}
