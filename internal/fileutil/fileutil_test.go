package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsTempName(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/watch/movie.mp4", false},
		{"/watch/movie.mp4.tmp", true},
		{"/watch/download.part", true},
		{"/watch/download.partial", true},
		{"/watch/video.crdownload", true},
		{"/watch/~$budget.xlsx", true},
		{"/watch/.notes.swp", true},
		{"/watch/db.lock", true},
		{"/watch/REPORT.TMP", true},
		{"/watch/normal.txt", false},
	}
	for _, tc := range cases {
		if got := IsTempName(tc.path); got != tc.want {
			t.Errorf("IsTempName(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mkv")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := FileSize(path); got != 10 {
		t.Fatalf("FileSize = %d, want 10", got)
	}
	if got := FileSize(filepath.Join(dir, "missing.mkv")); got != 0 {
		t.Fatalf("FileSize for missing file = %d, want 0", got)
	}
	if got := FileSize(dir); got != 0 {
		t.Fatalf("FileSize for directory = %d, want 0", got)
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5368709120, "5.0 GB"},
	}
	for _, tc := range cases {
		if got := FormatSize(tc.bytes); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}
