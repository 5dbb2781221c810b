package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/sheetcalc/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// Every command receives the CLI logger through its context.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Sheetcalc evaluates spreadsheet workbooks",
		Long: `Sheetcalc evaluates workbooks of named cells holding numbers, text and
arithmetic formulas, keeps dependent cells up to date, and rejects edits that
would create circular references. Workbooks are TOML files; the serve command
exposes them over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVar(&c.caseSensitive, "case-sensitive", false, "treat a1 and A1 as different cells")

	root.AddCommand(c.evalCommand())
	root.AddCommand(c.setCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
