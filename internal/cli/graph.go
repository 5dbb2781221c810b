package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sheetcalc/pkg/cache"
	"github.com/matzehuels/sheetcalc/pkg/calc"
	"github.com/matzehuels/sheetcalc/pkg/errors"
	"github.com/matzehuels/sheetcalc/pkg/render"
	"github.com/matzehuels/sheetcalc/pkg/workbook"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output  string // output file; stdout when empty
	format  string // "dot" or "svg"
	values  bool   // include computed values in labels
	noCache bool   // skip the result cache
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: formatDOT}

	cmd := &cobra.Command{
		Use:   "graph [file]",
		Short: "Export the dependency graph of a workbook",
		Long: `Export the cell dependency graph of a workbook as Graphviz DOT or SVG.
Arrows point from a cell to the cells whose formulas reference it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatDOT && opts.format != formatSVG {
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot or svg)", opts.format)
			}
			return c.runGraph(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg")
	cmd.Flags().BoolVar(&opts.values, "values", false, "show computed values in node labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, path string, opts *graphOpts) error {
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

	data, cached, err := c.renderGraph(ctx, wb, ch, cache.GraphKeyOpts{Format: opts.format, Values: opts.values})
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Rendered dependency graph")
	printFile(opts.output)
	printStats(len(wb.Cells), 0, cached)
	prog.done("exported graph", "format", opts.format, "cached", cached)
	return nil
}

// renderGraph returns the dependency graph of wb in the requested format,
// going through ch.
func (c *CLI) renderGraph(ctx context.Context, wb *workbook.Workbook, ch cache.Cache, opts cache.GraphKeyOpts) ([]byte, bool, error) {
	logger := loggerFromContext(ctx)
	key := c.keyer().GraphKey(wb.Hash(), opts)

	if data, hit, err := ch.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "err", err)
	} else if hit {
		logger.Debug("graph cache hit", "key", key)
		return data, true, nil
	}

	store, err := wb.NewStore(c.storeOptions()...)
	if err != nil {
		return nil, false, err
	}
	ro := render.Options{Contents: true}
	if opts.Values {
		ro.Values = calc.New(store, calc.WithLogger(c.Logger)).Values()
	}
	data := []byte(render.ToDOT(store, ro))
	if opts.Format == formatSVG {
		if data, err = render.RenderSVG(ctx, string(data)); err != nil {
			return nil, false, fmt.Errorf("render svg: %w", err)
		}
	}

	if err := ch.Set(ctx, key, data, cache.TTLGraph); err != nil {
		logger.Warn("cache write failed", "err", err)
	}
	return data, false, nil
}
