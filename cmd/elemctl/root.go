package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/udisondev/elemcore/internal/config"
	"github.com/udisondev/elemcore/internal/element"
)

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "config/engine.yaml"

var rootFlags struct {
	configPath   string
	elementsPath string
	logLevel     string
}

// cfg is filled by the persistent pre-run of every command.
var cfg config.Engine

var rootCmd = &cobra.Command{
	Use:           "elemctl",
	Short:         "Elemental stats and combat engine tooling",
	Long:          "elemctl validates element catalogs, inspects interactions and status\ntriggers, simulates combat and runs the engine service.",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: loadConfig,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", DefaultConfigPath, "engine config file")
	f.StringVar(&rootFlags.elementsPath, "elements", "", "element catalog file (overrides elements_file)")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "debug|info|warn|error (overrides log_level)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(triggerCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(roundtripCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.LoadEngine(rootFlags.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if rootFlags.elementsPath != "" {
		c.ElementsFile = rootFlags.elementsPath
	}
	if rootFlags.logLevel != "" {
		c.LogLevel = rootFlags.logLevel
	}

	level, err := config.ParseLogLevel(c.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	cfg = c
	return nil
}

func loadStore() (*element.Store, error) {
	store, err := config.LoadStore(cfg.ElementsFile)
	if err != nil {
		return nil, fmt.Errorf("loading elements: %w", err)
	}
	return store, nil
}
