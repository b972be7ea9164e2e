package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/interceptd/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	jsonOutput bool
	logLevel   string
	logFormat  string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "interceptd",
	Short: "interceptd answers outbound HTTP calls from declarative fixtures",
	Long: `interceptd resolves outbound HTTP calls against registered fixtures instead
of the network. A fixture binds a method, host and path to a predicate table
keyed by up to two query parameters; any call with no fixture fails.

Fixture files are YAML with ${VAR:-default} environment expansion.
Logging honours INTERCEPTD_LOG_LEVEL and INTERCEPTD_LOG_FORMAT.`,
	SilenceUsage:  true,
	SilenceErrors: true, // Main prints errors
}

// Main runs the command line and returns the process exit code.
func Main() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// Execute runs the command line and exits.
func Execute() {
	os.Exit(Main())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default $"+logging.EnvLevel+" or info)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text, json (default $"+logging.EnvFormat+" or text)")
}

// newLogger builds the operational logger from the environment and flags.
// Logs go to stderr so stdout stays parseable.
func newLogger(cmd *cobra.Command) *slog.Logger {
	cfg := logging.FromEnv()
	if logLevel != "" {
		cfg.Level = logging.ParseLevel(logLevel)
	}
	if logFormat != "" {
		cfg.Format = logging.ParseFormat(logFormat)
	}
	cfg.Output = cmd.ErrOrStderr()
	return logging.New(cfg)
}
