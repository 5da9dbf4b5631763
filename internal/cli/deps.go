package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shipcheck/shipcheck/platform"
)

var depsPlatform string

var depsCmd = &cobra.Command{
	Use:   "deps <tool>...",
	Short: "Check whether required tools resolve on a target platform",
	Long: `Probe each named tool on a target platform and report whether it resolves
and which version it self-reports. Tools are probed independently; one
broken tool never hides the others.

The command exits non-zero when any tool is missing, so it can gate CI
jobs.

Examples:
  shipcheck deps git python3 docker
  shipcheck deps node --platform wsl`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		defer r.Close()

		p := r.Current()
		if depsPlatform != "" {
			p, err = platform.ParsePlatform(depsPlatform)
			if err != nil {
				return err
			}
		}

		checks, err := r.CheckDependencies(cmd.Context(), p, args)
		if err != nil {
			return err
		}

		missing := 0
		for _, c := range checks {
			status := "ok"
			detail := c.Version
			if !c.Available {
				status = "missing"
				detail = c.Message
				missing++
			} else if detail == "" {
				detail = c.Message
			}
			fmt.Printf("  %-12s  %-8s  %s\n", c.Name, status, detail)
		}

		if missing > 0 {
			return fmt.Errorf("%d of %d tools missing on %s", missing, len(checks), p)
		}
		return nil
	},
}

func init() {
	depsCmd.Flags().StringVar(&depsPlatform, "platform", "", "platform to probe (default: current)")
	rootCmd.AddCommand(depsCmd)
}
