package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
)

var (
	queryThread   string
	queryTopK     int
	queryNoImages bool
	queryFilters  []string
	queryJSON     bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about your documents",
	Long: `Runs retrieval-augmented generation over the indexed documents:
retrieves the most relevant chunks, then asks the configured LLM to
answer from them. Pass --thread to continue a conversation; follow-up
questions are rewritten into standalone ones using recent turns.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryThread, "thread", "t", "", "thread id to continue (empty starts a new thread)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve")
	queryCmd.Flags().BoolVar(&queryNoImages, "no-images", false, "exclude image chunks from retrieval")
	queryCmd.Flags().StringSliceVar(&queryFilters, "filter", nil, "metadata filter field=value (repeatable)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	opts, err := buildQueryOptions()
	if err != nil {
		return err
	}

	result, err := queryService.QueryWithHistory(context.Background(), queryThread, args[0], opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printResult(cmd, result)
	return nil
}

func buildQueryOptions() (domain.QueryOptions, error) {
	opts := domain.QueryOptions{
		TopK:          queryTopK,
		IncludeImages: !queryNoImages,
	}

	if len(queryFilters) > 0 {
		filter := domain.NewFilter()
		for _, raw := range queryFilters {
			field, value, found := strings.Cut(raw, "=")
			if !found {
				return opts, fmt.Errorf("invalid filter %q, expected field=value", raw)
			}
			filter.Eq(strings.TrimSpace(field), strings.TrimSpace(value))
		}
		if err := filter.Validate(); err != nil {
			return opts, err
		}
		opts.Filter = filter
	}
	return opts, nil
}

func printResult(cmd *cobra.Command, result *domain.QueryResult) {
	cmd.Println(result.Answer)
	cmd.Println()

	if len(result.Retrieved) > 0 {
		cmd.Println("Sources:")
		for i, chunk := range result.Retrieved {
			location := chunk.FileName
			if chunk.PageNumber > 0 {
				location = fmt.Sprintf("%s p.%d", chunk.FileName, chunk.PageNumber)
			}
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, location, chunk.RelevanceScore)
		}
		cmd.Println()
	}

	cmd.Printf("Thread: %s (%.1fs)\n", result.ThreadID, result.ProcessingTime.Seconds())
}
