package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/knowledgeengine/internal/search"
	"github.com/Aman-CERP/knowledgeengine/internal/store"
)

func searchOpts(mode store.SearchMode, topK, rrfK int) search.Options {
	return search.Options{Mode: mode, TopK: topK, RRFK: rrfK}
}

func newSearchCmd() *cobra.Command {
	var mode string
	var topK int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a hybrid/vector/FTS search over ingested chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closer, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()

			searchMode := store.SearchMode(mode)
			results, err := a.Search.SearchChunks(cmd.Context(), args[0], searchOpts(searchMode, topK, a.Config.Search.RRFK))
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "[%.4f %s] chunk=%d doc=%d %s\n",
					r.Score, r.MatchType, r.Chunk.ID, r.Chunk.DocumentID, truncate(r.Chunk.Content, 80))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "hybrid", "search mode: vector, fts, hybrid")
	cmd.Flags().IntVar(&topK, "top-k", 10, "maximum results to return")
	return cmd
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
