package cli

import "github.com/spf13/cobra"

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	stats := ingestService.Stats(cmd.Context())
	cmd.Printf("Collection: %s\n", stats.CollectionName)
	cmd.Printf("Chunks:     %d\n", stats.TotalChunks)
	return nil
}
