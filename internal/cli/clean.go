package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cleanOlderThan time.Duration

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove stale temporary files left by previous runs",
	Long: `Remove entries under the shipcheck workspace older than the given age,
including leftovers of processes that died without cleaning up. State
records are never swept; use 'shipcheck states' to manage those.

An age of 0 removes every temporary entry present.

Examples:
  shipcheck clean
  shipcheck clean --older-than 30m
  shipcheck clean --older-than 0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		defer r.Close()

		removed, err := r.SweepOlderThan(cleanOlderThan)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d entries older than %s\n", removed, cleanOlderThan)
		return nil
	},
}

func init() {
	cleanCmd.Flags().DurationVar(&cleanOlderThan, "older-than", time.Hour, "age threshold (e.g. 30m, 2h)")
	rootCmd.AddCommand(cleanCmd)
}
