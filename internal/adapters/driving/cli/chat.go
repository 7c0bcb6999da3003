package cli

import (
	"bufio"
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
)

var chatThread string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive conversation with your documents",
	Long: `Starts an interactive loop: each line is a question answered with
retrieval-augmented generation, with the whole session sharing one
conversation thread. Type "exit" or press Ctrl-D to quit.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatThread, "thread", "t", "", "thread id to resume")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	threadID := chatThread
	scanner := bufio.NewScanner(cmd.InOrStdin())

	cmd.Println("Ask about your documents. Type \"exit\" to quit.")
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		result, err := queryService.QueryWithHistory(context.Background(), threadID, question, domain.QueryOptions{IncludeImages: true})
		if err != nil {
			cmd.PrintErrf("error: %v\n", err)
			continue
		}

		// Later turns stay in the thread the first answer opened.
		threadID = result.ThreadID

		cmd.Println()
		cmd.Println(result.Answer)
		if len(result.Retrieved) > 0 {
			sources := make([]string, 0, len(result.Retrieved))
			seen := map[string]bool{}
			for _, chunk := range result.Retrieved {
				if !seen[chunk.FileName] {
					seen[chunk.FileName] = true
					sources = append(sources, chunk.FileName)
				}
			}
			cmd.Printf("(sources: %s)\n", strings.Join(sources, ", "))
		}
		cmd.Println()
	}
}
