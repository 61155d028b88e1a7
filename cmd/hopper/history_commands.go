package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"hopper/internal/historyaccess"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List persisted batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateStatusFilters(statuses); err != nil {
				return err
			}
			return ctx.withHistory(func(access historyaccess.Access) error {
				batches, err := access.List(cmd.Context(), limit, statuses)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"batches": batches})
				}
				if len(batches) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "History is empty")
					return nil
				}
				table := renderTable(batchListHeaders(), buildBatchRows(batches), 3, 4)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	historyCmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by batch status (repeatable)")
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of batches to list (0 for all)")

	historyCmd.AddCommand(newHistoryHealthCommand(ctx))
	historyCmd.AddCommand(newHistoryDBHealthCommand(ctx))

	return historyCmd
}

func newHistoryHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show batch counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(access historyaccess.Access) error {
				health, err := access.Health(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, health)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\nUploading: %d\nCompleted: %d\nSigned: %d\n",
					health.Total, health.Uploading, health.Completed, health.Signed)
				return nil
			})
		},
	}
}

func newHistoryDBHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "db-health",
		Short: "Check history database health (schema, integrity, columns)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(access historyaccess.Access) error {
				resp, err := access.DatabaseHealth(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database path: %s\n", resp.DBPath)
				fmt.Fprintf(out, "Database exists: %s\n", yesNo(resp.DatabaseExists))
				fmt.Fprintf(out, "Readable: %s\n", yesNo(resp.DatabaseReadable))
				fmt.Fprintf(out, "Schema version: %s\n", resp.SchemaVersion)
				fmt.Fprintf(out, "batches table present: %s\n", yesNo(resp.TableExists))
				if len(resp.ColumnsPresent) > 0 {
					cols := append([]string(nil), resp.ColumnsPresent...)
					sort.Strings(cols)
					fmt.Fprintf(out, "Columns: %s\n", strings.Join(cols, ", "))
				}
				if len(resp.MissingColumns) > 0 {
					missing := append([]string(nil), resp.MissingColumns...)
					sort.Strings(missing)
					fmt.Fprintf(out, "Missing columns: %s\n", strings.Join(missing, ", "))
				} else {
					fmt.Fprintln(out, "Missing columns: none")
				}
				fmt.Fprintf(out, "Integrity check: %s\n", yesNo(resp.IntegrityCheck))
				fmt.Fprintf(out, "Total batches: %d\n", resp.TotalBatches)
				if resp.Error != "" {
					fmt.Fprintf(out, "Error: %s\n", resp.Error)
				}
				return nil
			})
		},
	}
}
