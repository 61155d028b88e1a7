package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hopper/internal/historyaccess"
	"hopper/internal/ipc"
	"hopper/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, folder, and batch status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			stdout := cmd.OutOrStdout()

			var daemonStatus *ipc.StatusResponse
			if client, err := ipc.Dial(ctx.socketPath()); err == nil {
				resp, statusErr := client.Status()
				client.Close()
				if statusErr != nil {
					return statusErr
				}
				daemonStatus = resp
			}

			if ctx.JSONMode() {
				payload := map[string]any{"daemon_running": daemonStatus != nil}
				if daemonStatus != nil {
					payload["status"] = daemonStatus
				}
				return writeJSON(cmd, payload)
			}

			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range daemonStatusLines(daemonStatus, colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Checks", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, result := range preflight.RunAll(cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(stdout, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("History", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if err := ctx.withHistory(func(access historyaccess.Access) error {
				health, err := access.Health(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Total: %d\nUploading: %d\nCompleted: %d\nSigned: %d\n",
					health.Total, health.Uploading, health.Completed, health.Signed)
				return nil
			}); err != nil {
				fmt.Fprintln(stdout, renderStatusLine("History", statusWarn, err.Error(), colorize))
			}

			if daemonStatus != nil {
				fmt.Fprintln(stdout)
				for _, line := range renderSectionHeader("Batches", colorize) {
					fmt.Fprintln(stdout, line)
				}
				rows := buildSessionRows(daemonStatus.Uploading, daemonStatus.Completed, daemonStatus.Signed)
				if len(rows) == 0 {
					fmt.Fprintln(stdout, "No batches tracked")
					return nil
				}
				fmt.Fprintln(stdout, renderTable([]string{"Status", "Count"}, rows, 1))
			}
			return nil
		},
	}
}

func daemonStatusLines(status *ipc.StatusResponse, colorize bool) []string {
	if status == nil {
		return []string{renderStatusLine("Daemon", statusInfo, "Not running", colorize)}
	}

	lines := []string{
		renderStatusLine("Daemon", statusOK, fmt.Sprintf("Running (pid %d)", status.PID), colorize),
	}
	if status.Running {
		detail := status.WatchFolder
		if !status.StartedAt.IsZero() {
			detail = fmt.Sprintf("%s (since %s)", status.WatchFolder, formatDisplayTime(status.StartedAt))
		}
		lines = append(lines, renderStatusLine("Watching", statusOK, detail, colorize))
	} else {
		lines = append(lines, renderStatusLine("Watching", statusInfo, "Stopped", colorize))
	}
	if status.HistoryEnabled {
		lines = append(lines, renderStatusLine("History", statusOK, status.HistoryDBPath, colorize))
	} else {
		lines = append(lines, renderStatusLine("History", statusInfo, "Disabled", colorize))
	}
	if status.LogPath != "" {
		lines = append(lines, renderStatusLine("Log", statusInfo, status.LogPath, colorize))
	}
	return lines
}
