package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hopper/internal/historyaccess"
)

func newClearCommand(ctx *commandContext) *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove signed batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(access historyaccess.Access) error {
				out := cmd.OutOrStdout()
				if clearAll {
					removed, err := access.ClearAll(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d batches\n", removed)
					return nil
				}
				removed, err := access.ClearSigned(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %d signed batches\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearAll, "all", false, "Remove every batch regardless of status")
	return cmd
}
