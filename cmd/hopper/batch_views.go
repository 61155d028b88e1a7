package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"hopper/internal/batch"
	"hopper/internal/ipc"
)

var statusTitle = cases.Title(language.Und)

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	return statusTitle.String(status)
}

// validateStatusFilters rejects --status values the daemon would silently
// ignore.
func validateStatusFilters(values []string) error {
	for _, value := range values {
		if _, ok := batch.ParseStatus(value); !ok {
			names := make([]string, 0, len(batch.AllStatuses()))
			for _, status := range batch.AllStatuses() {
				names = append(names, string(status))
			}
			return fmt.Errorf("unknown status %q (valid: %s)", value, strings.Join(names, ", "))
		}
	}
	return nil
}

func formatDisplayTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDisplayTime(*t)
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatFolder(folder string) string {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return "-"
	}
	if base := filepath.Base(folder); base != "" && base != "." {
		return base
	}
	return folder
}

func batchListHeaders() []string {
	return []string{"ID", "Folder", "Status", "Files", "Size", "Started", "Completed"}
}

func buildBatchRows(batches []ipc.BatchSummary) [][]string {
	if len(batches) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, []string{
			b.ID,
			formatFolder(b.Folder),
			formatStatusLabel(b.Status),
			fmt.Sprintf("%d", b.FileCount),
			formatSize(b.TotalSize),
			formatDisplayTime(b.StartedAt),
			formatOptionalTime(b.CompletedAt),
		})
	}
	return rows
}

func buildFileRows(files []ipc.BatchFile) [][]string {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f.Name, formatSize(f.Size)})
	}
	return rows
}

func buildSessionRows(uploading, completed, signed int) [][]string {
	if uploading+completed+signed == 0 {
		return nil
	}
	return [][]string{
		{formatStatusLabel("uploading"), fmt.Sprintf("%d", uploading)},
		{formatStatusLabel("completed"), fmt.Sprintf("%d", completed)},
		{formatStatusLabel("signed"), fmt.Sprintf("%d", signed)},
	}
}
