package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQueueCmd() *cobra.Command {
	var max int

	cmd := &cobra.Command{
		Use:   "process-queue",
		Short: "Drain pending media analysis tasks from the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closer, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()

			n, err := a.Core.ProcessMediaQueue(cmd.Context(), max)
			if err != nil {
				return fmt.Errorf("process_media_queue failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed=%d\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&max, "max", 10, "maximum tasks to process in this batch")
	return cmd
}
