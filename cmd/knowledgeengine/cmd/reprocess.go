package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newReprocessCmd() *cobra.Command {
	var customInstructions string

	cmd := &cobra.Command{
		Use:   "reanalyze <document-id>",
		Short: "Re-run the media analyzer for a document and rebuild its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid document id %q: %w", args[0], err)
			}

			a, closer, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()

			newID, err := a.Reprocess.Reanalyze(cmd.Context(), id, customInstructions)
			if err != nil {
				return fmt.Errorf("reanalyze failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "document_id=%d\n", newID)
			return nil
		},
	}
	cmd.Flags().StringVar(&customInstructions, "instructions", "", "custom instructions steering the re-analysis prompt")
	return cmd
}
