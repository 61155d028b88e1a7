package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hopper/internal/logging"
	"hopper/internal/testsupport"
)

func startWatchOrSkip(t *testing.T, folder string, recursive bool, deliver func(Change)) Watch {
	t.Helper()
	source := NewFSNotifySource(logging.NewNop())
	w, err := source.Watch(folder, recursive, deliver)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "not permitted") || strings.Contains(msg, "too many") {
			t.Skipf("skipping fsnotify test: %v", err)
		}
		t.Fatalf("Watch: %v", err)
	}
	t.Cleanup(func() {
		_ = w.Close()
	})
	return w
}

func waitForChange(t *testing.T, changes <-chan Change, match func(Change) bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case c := <-changes:
			if match(c) {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for change")
		}
	}
}

func changeWithin(changes <-chan Change, d time.Duration, match func(Change) bool) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case c := <-changes:
			if match(c) {
				return true
			}
		case <-timer.C:
			return false
		}
	}
}

func TestFSNotifySourceDeliversFileEvents(t *testing.T) {
	dir := t.TempDir()
	changes := make(chan Change, 16)
	startWatchOrSkip(t, dir, false, func(c Change) { changes <- c })

	testsupport.WriteFile(t, filepath.Join(dir, "clip.mp4"), 2048)

	waitForChange(t, changes, func(c Change) bool {
		return c.Op == OpCreate && len(c.Paths) == 1 && filepath.Base(c.Paths[0]) == "clip.mp4"
	})
}

func TestFSNotifySourceRecursivePicksUpNewDirs(t *testing.T) {
	dir := t.TempDir()
	changes := make(chan Change, 64)
	startWatchOrSkip(t, dir, true, func(c Change) { changes <- c })

	sub := filepath.Join(dir, "album")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	// The pump registers the new directory when its create event arrives, so
	// keep writing fresh files until one is observed.
	deadline := time.Now().Add(2 * time.Second)
	for i := 0; ; i++ {
		if time.Now().After(deadline) {
			t.Fatal("no change delivered from new subdirectory")
		}
		testsupport.WriteFile(t, filepath.Join(sub, fmt.Sprintf("track-%d.mp4", i)), 512)
		if changeWithin(changes, 200*time.Millisecond, func(c Change) bool {
			return len(c.Paths) == 1 && strings.HasPrefix(filepath.Base(c.Paths[0]), "track-")
		}) {
			return
		}
	}
}
