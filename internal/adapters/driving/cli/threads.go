package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var threadsJSON bool

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Manage conversation threads",
}

var threadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all conversation threads",
	Args:  cobra.NoArgs,
	RunE:  runThreadsList,
}

var threadsShowCmd = &cobra.Command{
	Use:   "show [thread-id]",
	Short: "Show the full history of a thread",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadsShow,
}

var threadsDeleteCmd = &cobra.Command{
	Use:   "delete [thread-id]",
	Short: "Delete a thread and its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadsDelete,
}

func init() {
	threadsListCmd.Flags().BoolVar(&threadsJSON, "json", false, "output as JSON")
	threadsCmd.AddCommand(threadsListCmd)
	threadsCmd.AddCommand(threadsShowCmd)
	threadsCmd.AddCommand(threadsDeleteCmd)
	rootCmd.AddCommand(threadsCmd)
}

func runThreadsList(cmd *cobra.Command, _ []string) error {
	summaries, err := threadService.List(cmd.Context())
	if err != nil {
		return err
	}

	if threadsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if len(summaries) == 0 {
		cmd.Println("No threads yet. Start one with: ragline query \"...\"")
		return nil
	}

	for _, s := range summaries {
		cmd.Printf("%s  %-50s  %2d messages  %s\n",
			s.ID, s.Title, s.MessageCount, s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runThreadsShow(cmd *cobra.Command, args []string) error {
	thread, err := threadService.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Thread: %s\n", thread.ID)
	cmd.Printf("Title:  %s\n", thread.Title)
	cmd.Printf("Tokens: %d\n\n", thread.TokenTotal())

	for _, msg := range thread.Messages {
		cmd.Printf("[%s] %s\n", msg.Role, msg.Content)
		if len(msg.RetrievedChunks) > 0 {
			for _, chunk := range msg.RetrievedChunks {
				cmd.Printf("    source: %s (%.2f)\n", chunk.FileName, chunk.RelevanceScore)
			}
		}
		cmd.Println()
	}
	return nil
}

func runThreadsDelete(cmd *cobra.Command, args []string) error {
	deleted, err := threadService.Delete(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("thread %q not found", args[0])
	}
	cmd.Printf("Deleted thread %s\n", args[0])
	return nil
}
