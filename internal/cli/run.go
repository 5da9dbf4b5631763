package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shipcheck/shipcheck"
	"github.com/shipcheck/shipcheck/platform"
)

var runCmd = &cobra.Command{
	Use:   "run [path...]",
	Short: "Validate delivery scripts and report per-platform outcomes",
	Long: `Validate delivery scripts by executing them on every configured target
platform. Directory arguments are walked for known script types; file
arguments are validated directly. With no arguments the current directory
is walked.

Each validation prints one outcome line. The command exits non-zero when
any script fails.

Examples:
  # Validate every script under the current directory
  shipcheck run

  # Validate one script on one platform, restoring app.conf if it fails
  shipcheck run deploy.sh --platform linux --backup app.conf

  # Pass arguments through to the scripts
  shipcheck run release/ --args --dry-run`,
	RunE: runRun,
}

var (
	runPlatforms []string
	runArgs      []string
	runBackups   []string
)

func init() {
	runCmd.Flags().StringSliceVar(&runPlatforms, "platform", nil, "target platforms (default: configured set)")
	runCmd.Flags().StringSliceVar(&runArgs, "args", nil, "arguments passed to every script")
	runCmd.Flags().StringSliceVar(&runBackups, "backup", nil, "files restored when a script fails")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	opts, err := buildRunOptions()
	if err != nil {
		return err
	}

	r, err := newRunner()
	if err != nil {
		return err
	}
	defer r.Close()

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	ctx := cmd.Context()
	var validations []shipcheck.Validation
	for _, path := range paths {
		batch, err := validatePath(ctx, r, path, opts)
		validations = append(validations, batch...)
		if err != nil {
			printValidations(validations)
			return err
		}
	}

	printValidations(validations)

	s := shipcheck.Summarize(validations)
	fmt.Printf("\n%d passed, %d failed, %d skipped\n", s.Passed, s.Failed, s.Skipped)
	if s.Failed > 0 {
		return fmt.Errorf("%d of %d validations failed", s.Failed, len(validations))
	}
	return nil
}

func buildRunOptions() ([]shipcheck.RunOption, error) {
	var opts []shipcheck.RunOption
	if len(runPlatforms) > 0 {
		targets := make([]platform.Platform, 0, len(runPlatforms))
		for _, s := range runPlatforms {
			p, err := platform.ParsePlatform(s)
			if err != nil {
				return nil, err
			}
			targets = append(targets, p)
		}
		opts = append(opts, shipcheck.WithPlatforms(targets...))
	}
	if len(runArgs) > 0 {
		opts = append(opts, shipcheck.WithArgs(runArgs...))
	}
	if len(runBackups) > 0 {
		opts = append(opts, shipcheck.WithBackupFiles(runBackups...))
	}
	return opts, nil
}

// validatePath validates one CLI path argument. Files are validated directly
// so an unknown extension is reported instead of silently skipped the way a
// directory walk would.
func validatePath(ctx context.Context, r *shipcheck.Runner, path string, opts []shipcheck.RunOption) ([]shipcheck.Validation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	if info.IsDir() {
		return r.ValidateAll(ctx, path, opts...)
	}

	script, err := shipcheck.NewScript(path)
	if err != nil {
		return nil, err
	}
	return r.ValidateScript(ctx, script, opts...), nil
}

func printValidations(validations []shipcheck.Validation) {
	for i := range validations {
		printValidation(&validations[i])
	}
}

func printValidation(v *shipcheck.Validation) {
	switch {
	case v.Skipped:
		fmt.Printf("SKIP  %s  [%s]  %s\n", v.Script.Path, v.Platform, v.SkipReason)
	case v.Passed():
		fmt.Printf("PASS  %s  [%s]  %s\n", v.Script.Path, v.Platform, formatRunDetails(v.Result))
	default:
		fmt.Printf("FAIL  %s  [%s]  exit code %d  %s\n",
			v.Script.Path, v.Platform, v.Result.ExitCode, formatRunDetails(v.Result))
		printIndented(v.Result.Stderr)
	}
}

func formatRunDetails(res *shipcheck.ExecResult) string {
	details := res.Duration.Round(time.Millisecond).String()
	if res.PeakMemory > 0 {
		details += ", peak " + formatBytes(res.PeakMemory)
	}
	if res.Truncated {
		details += ", output truncated"
	}
	return "(" + details + ")"
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// printIndented prints a failed script's stderr under its outcome line.
func printIndented(s string) {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return
	}
	for _, line := range strings.Split(s, "\n") {
		fmt.Printf("      %s\n", line)
	}
}
