// Package cli provides the command-line interface for the pattern scanner.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cupscan/internal/analysis/patterns"
	"cupscan/internal/config"
	"cupscan/internal/errors"
	"cupscan/internal/logging"
	"cupscan/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-08-25"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.PriceStore
	Detector *patterns.Detector
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	detector, err := patterns.NewDetectorWith(cfg.Detection.WindowSize, cfg.Detection.Thresholds())
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid detection settings, falling back to defaults")
		detector = patterns.NewDetector()
	}
	app.Detector = detector

	// Initialize SQLite store
	dataStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some commands may be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Database.Path).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "cupscan",
		Short: "Cupscan - cup-and-handle pattern scanner for US equities",
		Long: `Cupscan watches a small set of US equities, collects intraday bars from
Yahoo Finance and scans the closing prices for the five-point
cup-and-handle pattern.

Use 'cupscan serve' to run the collector and HTTP API together,
'cupscan fetch' for a one-shot collection and 'cupscan scan' to check
stored data from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Handle debug flag
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/cupscan)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newFetchCmd(app))
	rootCmd.AddCommand(newScanCmd(app))

	return rootCmd
}

// requireStore guards commands that need the SQLite store.
func requireStore(app *App) error {
	if app.Store == nil {
		return errors.Wrap(errors.ErrDatabaseError, "store unavailable")
	}
	return nil
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Cupscan v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Server")
	output.Printf("  Address:         %s\n", cfg.Server.Addr)
	output.Printf("  Read Timeout:    %s\n", cfg.Server.ReadTimeout)
	output.Printf("  Write Timeout:   %s\n", cfg.Server.WriteTimeout)
	output.Printf("  CORS:            %v\n", cfg.Server.CORSEnabled)
	output.Println()

	output.Bold("Database")
	output.Printf("  Path:            %s\n", cfg.Database.Path)
	output.Println()

	output.Bold("Collector")
	output.Printf("  Enabled:         %v\n", cfg.Collector.Enabled)
	output.Printf("  Schedule:        %s\n", cfg.Collector.Schedule)
	output.Printf("  Bar Interval:    %s\n", cfg.Collector.BarInterval)
	output.Printf("  Lookback:        %s\n", cfg.Collector.Lookback)
	output.Printf("  Max Retries:     %d\n", cfg.Collector.MaxRetries)
	output.Printf("  Market Hours:    %v\n", cfg.Collector.MarketHoursOnly)
	output.Printf("  Symbols:         %d watched\n", len(cfg.Collector.Watchlist()))
	output.Println()

	output.Bold("Detection")
	output.Printf("  Window Size:     %d\n", cfg.Detection.WindowSize)
	for _, pair := range patterns.DistancePairs {
		output.Printf("  Min Distance %s: %d\n", pair, cfg.Detection.DistanceThresholds[pair])
	}
	for _, pair := range patterns.PricePairs {
		output.Printf("  Fraction %s:     %.4f\n", pair, cfg.Detection.PriceThresholds[pair])
	}
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  Console:         %v\n", cfg.Logging.Console)
	output.Printf("  File:            %v\n", cfg.Logging.File)
	if cfg.Logging.File {
		output.Printf("  File Path:       %s\n", cfg.Logging.LogConfig().FilePath)
	}

	return nil
}
