package batch

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle of an upload batch.
type Status string

const (
	StatusUploading Status = "uploading"
	StatusCompleted Status = "completed"
	StatusSigned    Status = "signed"
)

var allStatuses = []Status{
	StatusUploading,
	StatusCompleted,
	StatusSigned,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// File is a single observed file within a batch. Size is zero when the file
// could not be stat'd at observation time.
type File struct {
	Name string
	Size int64
}

// Batch records one upload session for a folder. Files preserves first-seen
// order and grows only while the batch is Uploading; it is frozen on
// completion. Timestamps are set exactly once at the matching transition.
type Batch struct {
	ID          string
	Folder      string
	Files       []File
	Status      Status
	StartedAt   time.Time
	CompletedAt *time.Time
	SignedAt    *time.Time
}

// New creates an Uploading batch for the folder with a fresh identifier.
func New(folder string, now time.Time) *Batch {
	return &Batch{
		ID:        uuid.NewString(),
		Folder:    folder,
		Status:    StatusUploading,
		StartedAt: now,
	}
}

// FileCount reports the number of distinct files observed.
func (b *Batch) FileCount() int {
	return len(b.Files)
}

// TotalSize sums the recorded sizes of all files in the batch.
func (b *Batch) TotalSize() int64 {
	var total int64
	for _, f := range b.Files {
		total += f.Size
	}
	return total
}

// FileNames returns the file names in first-seen order.
func (b *Batch) FileNames() []string {
	names := make([]string, len(b.Files))
	for i, f := range b.Files {
		names[i] = f.Name
	}
	return names
}

// HasFile reports whether a file name was already observed.
func (b *Batch) HasFile(name string) bool {
	for _, f := range b.Files {
		if f.Name == name {
			return true
		}
	}
	return false
}

// IsActive reports whether the batch is still accumulating files.
func (b *Batch) IsActive() bool {
	return b.Status == StatusUploading
}

// Clone returns a deep copy safe to hand outside the state lock.
func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}
	cp := *b
	if len(b.Files) > 0 {
		cp.Files = make([]File, len(b.Files))
		copy(cp.Files, b.Files)
	}
	if b.CompletedAt != nil {
		t := *b.CompletedAt
		cp.CompletedAt = &t
	}
	if b.SignedAt != nil {
		t := *b.SignedAt
		cp.SignedAt = &t
	}
	return &cp
}

// CloneAll deep-copies a batch slice, preserving order.
func CloneAll(batches []*Batch) []*Batch {
	if batches == nil {
		return nil
	}
	out := make([]*Batch, len(batches))
	for i, b := range batches {
		out[i] = b.Clone()
	}
	return out
}
