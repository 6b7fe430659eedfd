package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dashmon/internal/config"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long:  "Load and validate the configuration file, checking format, required fields, value ranges, and the chart layout.",
	Run:   runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate executes the validate command logic.
func runValidate(cmd *cobra.Command, args []string) {
	configPath := GetConfigFile()

	// Load and validate configuration (Load internally calls Validate)
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration invalid: %v\n", err)
		os.Exit(1)
	}

	// The chart layout file is referenced by the config and validated with it
	if _, err := config.LoadLayout(cfg.Dashboard.LayoutFile); err != nil {
		fmt.Fprintf(os.Stderr, "chart layout invalid: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("configuration valid: %s\n", configPath)
}
