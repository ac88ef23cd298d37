// internal/cli/root.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"casematch-workers/internal/common/config"
	"casematch-workers/internal/common/logger"
)

var (
	// Global flags
	configPath string
	outputFmt  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "casematch",
	Short: "Offline tooling for the case-match scoring pipeline",
	Long: `casematch scores clinical cases against a patient query without
a running Zeebe cluster, and maintains the activity registry the workers
validate job variables against.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default: built-in scoring defaults)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table",
		"output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log scoring details to stderr")
}

// loadConfig reads --config when set; otherwise it returns nil and callers use defaults.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return nil, nil
	}
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newLogger() logger.Logger {
	if !verbose {
		return logger.NewNoOpLogger()
	}
	return logger.NewZapAdapter(logger.NewWithOutput("debug", "console", "stderr"))
}

func checkOutput() error {
	switch outputFmt {
	case "table", "json":
		return nil
	}
	return fmt.Errorf("unsupported output format %q (table, json)", outputFmt)
}
