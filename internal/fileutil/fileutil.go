package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// tempNamePatterns marks in-progress files written by browsers, editors, and
// office suites. Matching is a case-insensitive substring check on the base
// name, so "report.tmp" and "~$budget.xlsx" are both rejected.
var tempNamePatterns = []string{".tmp", ".temp", ".part", ".partial", ".crdownload", "~$", ".swp", ".lock"}

// IsTempName reports whether the path's base name looks like a temporary or
// partially written file.
func IsTempName(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, pattern := range tempNamePatterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// FileSize returns the size of the file at path in bytes. Missing or
// unreadable files report zero so callers can record the file anyway.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0
	}
	return info.Size()
}

// FormatSize renders a byte count in binary units (KB, MB, GB).
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
