package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hopper/internal/ipc"
)

func newSignCommand(ctx *commandContext) *cobra.Command {
	var signAll bool

	cmd := &cobra.Command{
		Use:   "sign [batch-id]",
		Short: "Mark completed batches as signed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if signAll {
				if len(args) > 0 {
					return errors.New("specify either a batch id or --all, not both")
				}
				return ctx.withClient(func(client *ipc.Client) error {
					resp, err := client.SignAll()
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Signed %d batches\n", resp.Signed)
					return nil
				})
			}

			if len(args) == 0 {
				return errors.New("batch id is required (or use --all)")
			}
			id := strings.TrimSpace(args[0])

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Sign(id)
				if err != nil {
					return err
				}
				switch {
				case strings.TrimSpace(resp.Message) != "":
					fmt.Fprintln(out, resp.Message)
				case resp.Signed:
					fmt.Fprintln(out, "Batch signed")
				default:
					fmt.Fprintln(out, "Batch not signed")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&signAll, "all", false, "Sign every completed batch")
	return cmd
}
