package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eirenik0/log-analyzer/internal/config"
)

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config <file>...",
	Short: "Derive a profile from observed logs",
	Long: `Scan the given log files and emit a YAML profile: every observed
component, command, and request name becomes a known entry, and
recurring component path prefixes become candidate session levels.
Parser and perf rules are copied from the template.

The result is a starting point; session create/complete commands and
summary fields are filled in by hand.

Examples:
  lga generate-config app.log
  lga generate-config app.log --profile-name myservice -o myservice.yaml
  lga generate-config app.log --template event-pipeline`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerateConfig,
}

var (
	// generate-config flags
	generateProfileName string
	generateTemplate    string
)

func init() {
	rootCmd.AddCommand(generateConfigCmd)

	generateConfigCmd.Flags().StringVar(&generateProfileName, "profile-name", "", "Name recorded in the generated profile")
	generateConfigCmd.Flags().StringVar(&generateTemplate, "template", "base",
		"Template to copy parser/perf rules from: "+strings.Join(config.BuiltinNames(), ", ")+", or a profile file path")
}

func runGenerateConfig(cmd *cobra.Command, args []string) error {
	base, err := config.LoadTemplate(generateTemplate)
	if err != nil {
		return err
	}

	entries, err := loadEntries(base, args)
	if err != nil {
		return err
	}

	name := generateProfileName
	if name == "" {
		name = "generated"
	}
	profile := config.Generate(entries, base, config.GenerateOptions{ProfileName: name})

	if outputPath != "" {
		if err := config.Save(profile, outputPath); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(os.Stderr, "profile written to %s\n", outputPath)
		}
		return nil
	}

	rendered, err := config.Marshal(profile)
	if err != nil {
		return err
	}
	fmt.Print(rendered)
	return nil
}
