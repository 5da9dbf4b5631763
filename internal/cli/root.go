package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shipcheck/shipcheck"
)

// defaultConfigFile is looked up in the working directory when --config is
// not given.
const defaultConfigFile = ".shipcheck.yaml"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "shipcheck",
	Short: "Validate delivery scripts across Windows, WSL, and Linux",
	Long: `shipcheck executes delivery scripts (.bat, .cmd, .ps1, .sh, .py) on the
platforms they claim to support and reports what actually happened: exit
codes, captured output, duration, and peak memory.

Failed runs roll back the filesystem changes they declared up front, and
interrupted runs leave state records behind that 'shipcheck states' can
restore or discard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx attached, so in-flight script
// executions stop when the process is interrupted.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+defaultConfigFile+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// loadConfig resolves the effective configuration: an explicit --config file,
// a .shipcheck.yaml in the working directory, or the built-in defaults.
func loadConfig() (*shipcheck.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	cfg := shipcheck.DefaultConfig()
	if path != "" {
		loaded, err := shipcheck.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Operational logs go to stderr so command output stays parseable.
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return cfg, nil
}

// newRunner builds a Runner from the effective configuration. Callers own
// the returned runner and must Close it.
func newRunner() (*shipcheck.Runner, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return shipcheck.NewRunner(cfg)
}
