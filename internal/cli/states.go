package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "Manage execution state records left by interrupted runs",
	Long: `Manage the execution state records shipcheck persists before every script
run. Completed runs consume their record; a record that is still present
belongs to a run that was interrupted or crashed mid-flight.

Commands:
  list      List persisted state records
  restore   Roll back the filesystem changes a record describes
  discard   Drop a record without restoring anything`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var statesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted execution state records",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		defer r.Close()

		states, err := r.PersistedStates()
		if err != nil {
			return err
		}
		if len(states) == 0 {
			fmt.Println("No persisted execution states.")
			return nil
		}

		for _, st := range states {
			fmt.Println(st.ID)
			fmt.Printf("  Script:    %s\n", st.ScriptPath)
			fmt.Printf("  Saved:     %s\n", st.Timestamp.Format("2006-01-02 15:04:05"))
			fmt.Printf("  Backups:   %d\n", len(st.ModifiedFiles))
			if len(st.CreatedFiles) > 0 {
				fmt.Printf("  Created:   %d\n", len(st.CreatedFiles))
			}
			if p, ok := st.Metadata["platform"]; ok {
				fmt.Printf("  Platform:  %s\n", p)
			}
			fmt.Println()
		}
		return nil
	},
}

var statesRestoreCmd = &cobra.Command{
	Use:   "restore <state-id>",
	Short: "Roll back the filesystem changes a record describes",
	Long: `Restore the backups recorded in a state record and delete the files the
run registered as created. The record is discarded once every restore
step succeeds; a partially restored record is kept so the restore can be
retried.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		defer r.Close()

		id := args[0]
		if !r.RestoreState(id) {
			return fmt.Errorf("state %s not found or not fully restored; record kept", id)
		}
		r.DiscardState(id)
		fmt.Printf("Restored %s\n", id)
		return nil
	},
}

var statesDiscardCmd = &cobra.Command{
	Use:   "discard <state-id>",
	Short: "Drop a record without restoring anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		defer r.Close()

		r.DiscardState(args[0])
		fmt.Printf("Discarded %s\n", args[0])
		return nil
	},
}

func init() {
	statesCmd.AddCommand(statesListCmd)
	statesCmd.AddCommand(statesRestoreCmd)
	statesCmd.AddCommand(statesDiscardCmd)
	rootCmd.AddCommand(statesCmd)
}
