// Package cmd implements the traderecon command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tradeops/traderecon/internal/cmd/output"
	"github.com/tradeops/traderecon/internal/config"
	"github.com/tradeops/traderecon/pkg/logging"
)

var (
	configFile string

	// flagFormat is the global output format selection.
	flagFormat  string
	flagQuiet   bool
	flagVerbose bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "traderecon",
	Short: "Trade reconciliation CLI",
	Long: `Traderecon reconciles trade records between broker and exchange ledgers.

It pairs records by trade identifier, detects field-level and timing
discrepancies under configurable tolerances, classifies exception severity,
and can enrich exceptions with automated root-cause analysis when an API
key is configured.`,
	PersistentPreRunE: setupCommand,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(version, commit, date string) {
	// Set version information
	Version = version
	Commit = commit
	Date = date

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Pass context to root command
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.traderecon.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "",
		"Output format: table, json, yaml, csv")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false,
		"Minimal output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"Verbose output")

	// Bind flags to viper
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("Failed to bind verbose flag: %v", err))
	}
	if err := viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet")); err != nil {
		panic(fmt.Sprintf("Failed to bind quiet flag: %v", err))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(configFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".traderecon" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".traderecon")
	}

	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	// Set up environment variable handling
	viper.SetEnvPrefix("TRADERECON")
	viper.AutomaticEnv() // Read in environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Explicitly bind API key environment variables so values from .env
	// files are visible through Viper
	config.BindEnvVars()
	config.SetDefaults()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && flagVerbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Configure logging based on verbose flag and environment
	configureLogging()
}

// setupCommand is called before any command runs.
func setupCommand(_ *cobra.Command, _ []string) error {
	// Validate and default the output format based on terminal detection.
	// ParseFormat folds case, so the canonical form is kept.
	format, err := output.ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}
	flagFormat = string(format)

	return nil
}

// configureLogging sets up the logging system based on configuration.
func configureLogging() {
	// Determine log level
	level := zerolog.InfoLevel
	if flagVerbose || viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	if flagQuiet || viper.GetBool("quiet") {
		level = zerolog.WarnLevel
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}

	zerolog.SetGlobalLevel(level)

	var logger zerolog.Logger
	if os.Getenv("LOG_FORMAT") == "json" {
		logger = logging.NewJSON(os.Stderr)
	} else {
		logger = logging.NewConsole()
	}
	logging.SetDefault(logger.Level(level))
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env",
		".env.local",
	}

	for _, envFile := range envFiles {
		// Use godotenv to load the file into the environment
		if err := godotenv.Load(envFile); err == nil && flagVerbose {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}
}
