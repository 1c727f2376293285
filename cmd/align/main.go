package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reformtrack/align/dataset"
	"github.com/reformtrack/align/internal/config"
	"github.com/reformtrack/align/internal/logging"
)

// ============================================================================
// ALIGN CLI — EU reform-alignment explorer
// ============================================================================

const version = "0.3.0"

var (
	// Global flags
	configPath string
	dataPath   string
	verbose    bool

	// Set by PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "align",
	Short: "ALIGN - explore EU country-report evaluations",
	Long: `ALIGN charts how European Commission country reports evaluate a
candidate country's reforms, sentence by sentence, across years, chapters,
topics and institutions.

  align serve                           # HTTP API on :8080
  align render --chapter democracy_section --format text
  align render --topic elections --from 2018 --to 2021 --svg chart.svg
  align controls --institution EC`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dataPath != "" {
			cfg.Data.Path = dataPath
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "align v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default align.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Path to the sentence table (.csv or .parquet)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd, renderCmd, controlsCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLoader() *dataset.Loader {
	return dataset.NewLoader(cfg.Data.Path,
		dataset.WithLogger(logger),
		dataset.WithParquetParallelism(cfg.Data.ParquetParallelism),
	)
}
