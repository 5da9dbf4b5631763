package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shipcheck/shipcheck/platform"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "Show which target platforms can execute from this host",
	Long: `Show the platform shipcheck detected for this host and, for every target
platform, whether scripts can execute there: natively, through the
Windows-to-WSL bridge, or not at all.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		defer r.Close()

		fmt.Printf("Current platform: %s\n\n", r.Current())
		for _, p := range platform.Platforms() {
			status := "unreachable"
			switch {
			case r.Available(p):
				status = "native"
			case r.Reachable(p):
				status = "reachable via wsl.exe"
			}

			var types []string
			for _, t := range platform.ScriptTypes() {
				if platform.Supports(p, t) {
					types = append(types, string(t))
				}
			}

			fmt.Printf("  %-8s  %-22s  %s\n", p, status, strings.Join(types, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}
