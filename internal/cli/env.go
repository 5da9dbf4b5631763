package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shipcheck/shipcheck/platform"
)

var envPlatform string

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Describe a target platform's execution environment",
	Long: `Probe a target platform and print its OS version, shell and Python
versions, and which commonly needed tools resolve on its PATH. The probe
is live; tools installed since the last call are visible.

Examples:
  shipcheck env
  shipcheck env --platform wsl`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		defer r.Close()

		p := r.Current()
		if envPlatform != "" {
			p, err = platform.ParsePlatform(envPlatform)
			if err != nil {
				return err
			}
		}

		info, err := r.EnvironmentInfo(cmd.Context(), p)
		if err != nil {
			return err
		}

		fmt.Printf("Platform:  %s\n", info.Platform)
		fmt.Printf("OS:        %s\n", orUnknown(info.OSVersion))
		fmt.Printf("Shell:     %s\n", orUnknown(info.ShellVersion))
		fmt.Printf("Python:    %s\n", orUnknown(info.RuntimeVersion))
		if len(info.AvailableCommands) > 0 {
			fmt.Printf("Commands:  %s\n", strings.Join(info.AvailableCommands, ", "))
		}
		return nil
	},
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}

func init() {
	envCmd.Flags().StringVar(&envPlatform, "platform", "", "platform to probe (default: current)")
	rootCmd.AddCommand(envCmd)
}
