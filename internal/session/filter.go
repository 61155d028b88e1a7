package session

import (
	"os"
	"path/filepath"
	"strings"

	"hopper/internal/config"
	"hopper/internal/fileutil"
)

// Op classifies a raw filesystem change.
type Op uint8

const (
	// OpOther covers renames, removals, and metadata-only changes; the
	// filter rejects them.
	OpOther Op = iota
	// OpCreate marks a path creation.
	OpCreate
	// OpModify marks a content write to an existing path.
	OpModify
)

// Change is one raw notification delivered by a Source.
type Change struct {
	Op    Op
	Paths []string
}

// fileEvent is an accepted (folder, file) pair with the file's observed size.
type fileEvent struct {
	Folder string
	Name   string
	Size   int64
}

// eventFilter classifies raw changes into qualifying upload events. It is
// pure classification: unreadable or ambiguous paths are skipped, never
// reported as errors.
type eventFilter struct {
	extensions map[string]struct{}
	ignores    []string
	rejectTemp bool
	stat       func(string) (os.FileInfo, error)
}

func newEventFilter(watch config.Watch) *eventFilter {
	exts := make(map[string]struct{}, len(watch.FileTypes))
	for _, ext := range watch.FileTypes {
		exts[ext] = struct{}{}
	}
	return &eventFilter{
		extensions: exts,
		ignores:    watch.IgnoreFolders,
		rejectTemp: watch.IgnoreTempFiles,
		stat:       os.Stat,
	}
}

// accept returns the qualifying (folder, file) pairs contained in a change.
// An empty extension allow-list accepts every extension; files without an
// extension are always skipped.
func (f *eventFilter) accept(change Change) []fileEvent {
	if change.Op != OpCreate && change.Op != OpModify {
		return nil
	}

	var accepted []fileEvent
	for _, path := range change.Paths {
		ext := strings.ToLower(filepath.Ext(path))
		if ext == "" || ext == "." {
			continue
		}
		if len(f.extensions) > 0 {
			if _, ok := f.extensions[ext]; !ok {
				continue
			}
		}
		if f.ignored(path) {
			continue
		}
		if f.rejectTemp && fileutil.IsTempName(path) {
			continue
		}

		info, err := f.stat(path)
		if err == nil && info.IsDir() {
			continue
		}
		var size int64
		if err == nil {
			size = info.Size()
		}

		accepted = append(accepted, fileEvent{
			Folder: filepath.Dir(path),
			Name:   filepath.Base(path),
			Size:   size,
		})
	}
	return accepted
}

// ignored runs a raw substring test for each configured segment wrapped in
// either slash convention. The path string is never split into components;
// a trailing segment without a closing separator is not matched.
func (f *eventFilter) ignored(path string) bool {
	for _, segment := range f.ignores {
		if strings.Contains(path, "/"+segment+"/") || strings.Contains(path, `\`+segment+`\`) {
			return true
		}
	}
	return false
}
