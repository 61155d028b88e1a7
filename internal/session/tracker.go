package session

import (
	"time"

	"hopper/internal/batch"
)

// folderTracker is the ephemeral working state for one actively uploading
// folder. It exists only between the first qualifying event and the sweep
// that promotes its batch to completed; the registry holds at most one
// tracker per folder path.
type folderTracker struct {
	files         []batch.File
	lastActivity  time.Time
	notifiedStart bool
	batchID       string
}

// addFile appends a newly seen name or refreshes the recorded size of a file
// that is still growing. Sizes never shrink; a partial write observed after a
// larger one keeps the larger value.
func (t *folderTracker) addFile(name string, size int64) {
	for i := range t.files {
		if t.files[i].Name == name {
			if size > t.files[i].Size {
				t.files[i].Size = size
			}
			return
		}
	}
	t.files = append(t.files, batch.File{Name: name, Size: size})
}

// fileSet copies the working file set in first-seen order.
func (t *folderTracker) fileSet() []batch.File {
	out := make([]batch.File, len(t.files))
	copy(out, t.files)
	return out
}
