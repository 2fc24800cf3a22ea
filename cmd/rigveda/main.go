package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rigveda-rag/internal/config"
	"rigveda-rag/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool
	fromDB     bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rigveda",
	Short: "Search, explore and ask questions about the Rigveda",
	Long: `rigveda works over the ten mandalas of the Rigveda.

It searches and samples verses, resolves stanza locations, fetches
translations from VedaWeb, lists recitations, answers questions with a
local Ollama model and serves the same features as a JSON API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Verbose = true
		}
		logger, err = logging.New(cfg.Logging.Verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&fromDB, "from-db", false, "load verses from the Postgres index instead of JSON partitions")

	rootCmd.AddCommand(
		searchCmd,
		mandalaCmd,
		randomCmd,
		locationCmd,
		translateCmd,
		audioCmd,
		chatCmd,
		quizCmd,
		serveCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
