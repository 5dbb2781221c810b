package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sheetcalc/pkg/calc"
	"github.com/matzehuels/sheetcalc/pkg/workbook"
)

// setCommand creates the set command.
func (c *CLI) setCommand() *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "set [file] [cell] [contents]",
		Short: "Set one cell of a workbook and print the affected cells",
		Long: `Set a cell of a workbook file from raw input and save the file.

Contents starting with "=" are formulas, contents that parse as a number are
numbers, anything else is text. Empty contents clear the cell. The cell and
every cell that depends on it are printed in recalculation order. An edit
that would create a circular reference is rejected and the file is left
unchanged.`,
		Example: `  sheetcalc set budget.toml A1 1200
  sheetcalc set budget.toml total "=A1+A2"
  sheetcalc set budget.toml A2 ""`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSet(cmd.Context(), args[0], args[1], args[2], create)
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "create the workbook file if it does not exist")

	return cmd
}

func (c *CLI) runSet(ctx context.Context, path, cell, contents string, create bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	wb, err := workbook.ReadFile(path)
	if err != nil {
		if !create || !stderrors.Is(err, fs.ErrNotExist) {
			return err
		}
		logger.Debug("creating workbook", "path", path)
		wb = &workbook.Workbook{Version: workbook.Version}
	}

	res, err := c.applySet(wb, cell, contents)
	if err != nil {
		return err
	}
	if err := res.wb.WriteFile(path); err != nil {
		return err
	}

	printSuccess("Set %s", res.cell)
	printFile(path)
	printValueTable(res.affected)
	prog.done("updated workbook", "file", path, "affected", len(res.affected))
	printNextStep("Evaluate the workbook", fmt.Sprintf("%s eval %s", appName, path))
	return nil
}

type setResult struct {
	wb       *workbook.Workbook
	cell     string
	affected []cellRow
}

// applySet restores wb, sets one cell, and returns the updated workbook
// with the affected cells in recalculation order.
func (c *CLI) applySet(wb *workbook.Workbook, cell, contents string) (*setResult, error) {
	store, err := wb.NewStore(c.storeOptions()...)
	if err != nil {
		return nil, err
	}
	engine := calc.New(store, calc.WithLogger(c.Logger))

	order, err := engine.Set(cell, contents)
	if err != nil {
		return nil, err
	}
	name, _ := store.CellName(cell)
	return &setResult{
		wb:       workbook.Capture(store),
		cell:     name,
		affected: engineRows(engine, order),
	}, nil
}
