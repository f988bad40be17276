package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eirenik0/log-analyzer/internal/config"
	"github.com/eirenik0/log-analyzer/internal/filter"
	"github.com/eirenik0/log-analyzer/internal/parser"
	"github.com/eirenik0/log-analyzer/internal/ui"
	"github.com/eirenik0/log-analyzer/pkg/types"
)

var (
	// Global flags
	filterExpr  string
	profilePath string
	format      string
	jsonOut     bool
	compactOut  bool
	outputPath  string
	colorMode   string
	verbosity   int
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:   "lga",
	Short: "Log analyzer for structured application logs",
	Long: `lga parses structured application logs into typed entries and runs
batch analyses over them: semantic payload comparison, operation timing,
and hierarchical session tracking.

Inspection Commands:
  lga info app.log                     # Overview: levels, types, components
  lga search app.log -f "l:ERROR"      # Filtered listing with context
  lga extract app.log --field user.id  # Aggregate one payload field
  lga browse app.log                   # Interactive entry browser

Analysis Commands:
  lga compare run1.log run2.log        # Semantic payload comparison
  lga perf app.log                     # Operation pairing and timing
  lga sessions app.log                 # Session lifecycle report
  lga trace app.log --id 4--ab12       # Single-lifecycle timeline

Configuration:
  lga generate-config app.log          # Derive a profile from observed logs

Filter expressions combine typed terms (AND between types, OR within):
  component:core level:ERROR text:"connection lost" direction:incoming
Prefix a term with ! to exclude: component:core !level:DEBUG`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&filterExpr, "filter", "f", "", "Filter expression, e.g. 'component:core level:ERROR'")
	rootCmd.PersistentFlags().StringVar(&profilePath, "config", "", "Profile YAML path (default: embedded base profile)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "F", "text", "Output format (text|json)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "Shorthand for --format json")
	rootCmd.PersistentFlags().BoolVarP(&compactOut, "compact", "c", false, "Compact single-line JSON")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "Write output to a file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Colorize output (auto|always|never)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase diagnostic verbosity")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress warnings")

	// Bind flags to viper
	_ = viper.BindPFlag("filter", rootCmd.PersistentFlags().Lookup("filter"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
}

func initConfig() {
	// Read from environment variables
	viper.SetEnvPrefix("LGA")
	viper.AutomaticEnv()

	// Priority: flag > LGA_* env var
	if profilePath == "" {
		profilePath = viper.GetString("config")
	}
	if filterExpr == "" {
		filterExpr = viper.GetString("filter")
	}

	switch colorMode {
	case "always":
		ui.SetColor(true)
	case "never":
		ui.SetColor(false)
	default:
		// File output never gets escape codes.
		if outputPath != "" {
			ui.SetColor(false)
		}
	}
}

// jsonFormat reports whether machine-readable output was requested.
func jsonFormat() bool {
	return jsonOut || format == "json"
}

// uiOptions builds rendering options for text output.
func uiOptions(payloads bool) ui.Options {
	return ui.Options{Payloads: payloads, JSON: !compactOut, Compact: compactOut}
}

// loadProfile loads the configured profile, or the embedded base one.
func loadProfile() (*config.Profile, error) {
	return config.Load(profilePath)
}

// parseFilter parses the global filter expression and reports its warnings.
func parseFilter() (*filter.Expression, error) {
	expr, err := filter.Parse(filterExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	if !quiet {
		for _, msg := range expr.Warnings() {
			color.New(color.FgYellow).Fprintln(os.Stderr, "warning: "+msg)
		}
	}
	return expr, nil
}

// loadEntries parses the given log files into one merged stream.
func loadEntries(profile *config.Profile, paths []string) ([]*types.LogEntry, error) {
	p := parser.New(profile)
	result, err := p.ParseFiles(paths)
	if err != nil {
		return nil, err
	}
	printParseWarnings(result.Warnings)
	return result.Entries, nil
}

// loadFiltered parses the files and applies the global filter.
func loadFiltered(paths []string) ([]*types.LogEntry, *config.Profile, error) {
	profile, err := loadProfile()
	if err != nil {
		return nil, nil, err
	}
	entries, err := loadEntries(profile, paths)
	if err != nil {
		return nil, nil, err
	}
	expr, err := parseFilter()
	if err != nil {
		return nil, nil, err
	}
	return expr.Apply(entries), profile, nil
}

// printParseWarnings reports malformed-record warnings to stderr. Without -v
// the list is capped so a badly mangled file does not drown the report.
func printParseWarnings(warnings []parser.Warning) {
	if quiet || len(warnings) == 0 {
		return
	}

	limit := len(warnings)
	if verbosity == 0 && limit > 10 {
		limit = 10
	}

	yellow := color.New(color.FgYellow)
	for _, w := range warnings[:limit] {
		yellow.Fprintln(os.Stderr, "warning: "+w.String())
	}
	if limit < len(warnings) {
		yellow.Fprintf(os.Stderr, "warning: %d more (use -v to see all)\n", len(warnings)-limit)
	}
}

// outputWriter resolves --output. The returned closer is a no-op for stdout.
func outputWriter() (*os.File, func(), error) {
	if outputPath == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file '%s': %w", outputPath, err)
	}
	return f, func() { f.Close() }, nil
}
