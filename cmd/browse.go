package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eirenik0/log-analyzer/internal/ui"
)

var browseCmd = &cobra.Command{
	Use:   "browse <file>...",
	Short: "Browse parsed entries interactively",
	Long: `Open an interactive browser over the parsed (and filtered) entries:
scroll with the arrow keys, type to narrow the list, and inspect the
selected entry's fields and payload in the details panel.

Examples:
  lga browse app.log
  lga browse app.log -f "level:ERROR"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	entries, _, err := loadFiltered(args)
	if err != nil {
		return err
	}
	return ui.Browse(entries)
}
