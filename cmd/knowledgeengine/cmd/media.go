package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newMediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media <document-id>",
		Short: "Print the aggregated summary/transcript/OCR/keywords for a media document",
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

			details, err := a.Media.GetMediaDetails(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get_media_details failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "summary: %s\n", details.Summary)
			fmt.Fprintf(out, "duration_seconds: %g\n", details.Duration)
			fmt.Fprintf(out, "keywords: %v\n", details.Keywords)
			for _, seg := range details.Transcript {
				fmt.Fprintf(out, "  [%g] %s\n", seg.StartSeconds, seg.Content)
			}
			for _, line := range details.OCR {
				fmt.Fprintf(out, "  ocr: %s\n", line)
			}
			return nil
		},
	}
	return cmd
}
