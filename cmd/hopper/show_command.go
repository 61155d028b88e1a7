package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"hopper/internal/historyaccess"
	"hopper/internal/ipc"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <batch-id>",
		Short: "Show details for a single batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return errors.New("batch id is required")
			}
			return ctx.withHistory(func(access historyaccess.Access) error {
				summary, err := access.Describe(cmd.Context(), id)
				if err != nil {
					return err
				}
				if summary == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Batch %s not found\n", id)
					return nil
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, summary)
				}
				printBatchDetail(cmd.OutOrStdout(), *summary)
				return nil
			})
		},
	}
}

func printBatchDetail(out io.Writer, b ipc.BatchSummary) {
	fmt.Fprintf(out, "ID:        %s\n", b.ID)
	fmt.Fprintf(out, "Folder:    %s\n", b.Folder)
	fmt.Fprintf(out, "Status:    %s\n", formatStatusLabel(b.Status))
	fmt.Fprintf(out, "Files:     %d\n", b.FileCount)
	fmt.Fprintf(out, "Size:      %s\n", formatSize(b.TotalSize))
	fmt.Fprintf(out, "Started:   %s\n", formatDisplayTime(b.StartedAt))
	fmt.Fprintf(out, "Completed: %s\n", formatOptionalTime(b.CompletedAt))
	fmt.Fprintf(out, "Signed:    %s\n", formatOptionalTime(b.SignedAt))
	if len(b.Files) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable([]string{"File", "Size"}, buildFileRows(b.Files), 1))
	}
}
