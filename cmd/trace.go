package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eirenik0/log-analyzer/internal/trace"
	"github.com/eirenik0/log-analyzer/internal/ui"
)

var traceCmd = &cobra.Command{
	Use:   "trace <file>...",
	Short: "Follow one request or session through the merged stream",
	Long: `Collect every entry belonging to a single lifecycle and print them
as a timeline with per-step time deltas. Select the lifecycle by a
correlation id substring (--id) or a session path substring (--session).

Examples:
  lga trace app.log --id 4--5f2a
  lga trace app.log worker.log --session manager-3
  lga trace app.log --id 4--5f2a --payloads`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTrace,
}

var (
	// trace flags
	traceID       string
	traceSession  string
	tracePayloads bool
)

func init() {
	rootCmd.AddCommand(traceCmd)

	traceCmd.Flags().StringVar(&traceID, "id", "", "Correlation id substring to follow")
	traceCmd.Flags().StringVar(&traceSession, "session", "", "Session path substring to follow")
	traceCmd.Flags().BoolVar(&tracePayloads, "payloads", false, "Print JSON payloads under each step")
	traceCmd.MarkFlagsMutuallyExclusive("id", "session")
	traceCmd.MarkFlagsOneRequired("id", "session")
}

func runTrace(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}
	entries, err := loadEntries(profile, args)
	if err != nil {
		return err
	}
	expr, err := parseFilter()
	if err != nil {
		return err
	}

	selector := trace.Selector{Kind: trace.ByID, Value: traceID}
	if traceSession != "" {
		selector = trace.Selector{Kind: trace.BySession, Value: traceSession}
	}

	steps := trace.Collect(entries, expr, selector)

	w, closeOut, err := outputWriter()
	if err != nil {
		return err
	}
	defer closeOut()

	if jsonFormat() {
		return writeJSON(w, entryViews(steps))
	}

	if len(steps) == 0 {
		fmt.Fprintf(w, "No entries match %s '%s'\n", selector.Kind, selector.Value)
		return nil
	}

	ui.WriteTrace(w, steps, uiOptions(tracePayloads))
	fmt.Fprintf(w, "\n%d steps over %s\n", len(steps),
		steps[len(steps)-1].Timestamp.Sub(steps[0].Timestamp))
	return nil
}
