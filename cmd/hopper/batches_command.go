package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hopper/internal/ipc"
)

func newBatchesCommand(ctx *commandContext) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "batches",
		Short: "List batches tracked by the running session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateStatusFilters(statuses); err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.BatchList(statuses)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, resp)
				}
				if len(resp.Batches) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No batches tracked")
					return nil
				}
				table := renderTable(batchListHeaders(), buildBatchRows(resp.Batches), 3, 4)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by batch status (repeatable)")
	return cmd
}
