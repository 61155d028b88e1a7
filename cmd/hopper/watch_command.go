package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"hopper/internal/ipc"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream batch activity as it happens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				interval = 2 * time.Second
			}
			return ctx.withClient(func(client *ipc.Client) error {
				return runWatch(cmd, client, interval)
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Poll interval")
	return cmd
}

func runWatch(cmd *cobra.Command, client *ipc.Client, interval time.Duration) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Watching batch activity... (Ctrl+C to stop)")

	resp, err := client.BatchList(nil)
	if err != nil {
		return err
	}

	// The daemon lists newest first; flip to chronological for display.
	batches := resp.Batches
	sort.SliceStable(batches, func(i, j int) bool {
		return batches[i].StartedAt.Before(batches[j].StartedAt)
	})

	known := make(map[string]watchedBatch, len(batches))
	for _, b := range batches {
		printWatchLine(out, "=", b.Folder, describeWatchBatch(b))
		known[b.ID] = watchedBatch{folder: b.Folder, status: b.Status, files: b.FileCount}
	}

	watchCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-watchCtx.Done():
			return nil
		case <-ticker.C:
			resp, err := client.BatchList(nil)
			if err != nil {
				return fmt.Errorf("poll daemon: %w", err)
			}
			known = reportWatchChanges(out, known, resp.Batches)
		}
	}
}

type watchedBatch struct {
	folder string
	status string
	files  int
}

// reportWatchChanges prints one line per observed transition and returns the
// refreshed view of tracked batches.
func reportWatchChanges(out io.Writer, known map[string]watchedBatch, batches []ipc.BatchSummary) map[string]watchedBatch {
	next := make(map[string]watchedBatch, len(batches))
	for _, b := range batches {
		cur := watchedBatch{folder: b.Folder, status: b.Status, files: b.FileCount}
		next[b.ID] = cur

		prev, seen := known[b.ID]
		switch {
		case !seen:
			printWatchLine(out, "+", b.Folder, describeWatchBatch(b))
		case prev.status != cur.status:
			printWatchLine(out, " ", b.Folder, fmt.Sprintf("%s -> %s", formatStatusLabel(prev.status), formatStatusLabel(cur.status)))
		case prev.files != cur.files:
			printWatchLine(out, " ", b.Folder, fmt.Sprintf("%d files, %s", b.FileCount, formatSize(b.TotalSize)))
		}
	}
	for id, prev := range known {
		if _, ok := next[id]; !ok {
			printWatchLine(out, "-", prev.folder, "cleared")
		}
	}
	return next
}

func describeWatchBatch(b ipc.BatchSummary) string {
	return fmt.Sprintf("%s, %d files, %s", formatStatusLabel(b.Status), b.FileCount, formatSize(b.TotalSize))
}

func printWatchLine(out io.Writer, mark, folder, detail string) {
	fmt.Fprintf(out, "[%s] %s %s  %s\n", time.Now().Format("15:04:05"), mark, formatFolder(folder), detail)
}
