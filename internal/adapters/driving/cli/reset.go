package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe the entire index",
	Long:  `Removes every indexed chunk. Conversation threads are kept.`,
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "skip confirmation")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if !resetForce {
		return fmt.Errorf("reset deletes all indexed chunks; re-run with --force to confirm")
	}
	if err := ingestService.Reset(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Index reset.")
	return nil
}
