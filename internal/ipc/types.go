package ipc

import (
	"time"

	"hopper/internal/batch"
)

// BatchFile is one observed file within a batch.
type BatchFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// BatchSummary is the wire representation of a batch.
type BatchSummary struct {
	ID          string      `json:"id"`
	Folder      string      `json:"folder"`
	Status      string      `json:"status"`
	Files       []BatchFile `json:"files"`
	FileCount   int         `json:"file_count"`
	TotalSize   int64       `json:"total_size"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	SignedAt    *time.Time  `json:"signed_at,omitempty"`
}

// FromBatch converts a batch into its wire representation.
func FromBatch(b *batch.Batch) BatchSummary {
	summary := BatchSummary{
		ID:        b.ID,
		Folder:    b.Folder,
		Status:    string(b.Status),
		FileCount: b.FileCount(),
		TotalSize: b.TotalSize(),
		StartedAt: b.StartedAt,
	}
	if len(b.Files) > 0 {
		summary.Files = make([]BatchFile, len(b.Files))
		for i, f := range b.Files {
			summary.Files[i] = BatchFile{Name: f.Name, Size: f.Size}
		}
	}
	if b.CompletedAt != nil {
		t := *b.CompletedAt
		summary.CompletedAt = &t
	}
	if b.SignedAt != nil {
		t := *b.SignedAt
		summary.SignedAt = &t
	}
	return summary
}

// StartRequest asks the daemon to begin watching.
type StartRequest struct{}

// StartResponse indicates whether watching started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest asks the daemon to stop watching.
type StopRequest struct{}

// StopResponse indicates whether watching stopped.
type StopResponse struct {
	Stopped bool   `json:"stopped"`
	Message string `json:"message"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse describes the daemon and the current watch session.
type StatusResponse struct {
	Running        bool      `json:"running"`
	StartedAt      time.Time `json:"started_at"`
	WatchFolder    string    `json:"watch_folder"`
	ActiveFolders  int       `json:"active_folders"`
	Uploading      int       `json:"uploading"`
	Completed      int       `json:"completed"`
	Signed         int       `json:"signed"`
	PID            int       `json:"pid"`
	LockPath       string    `json:"lock_path"`
	HistoryDBPath  string    `json:"history_db_path"`
	HistoryEnabled bool      `json:"history_enabled"`
	LogPath        string    `json:"log_path"`
}

// BatchListRequest filters the live batch listing by status.
type BatchListRequest struct {
	Statuses []string `json:"statuses"`
}

// BatchListResponse contains live batches, newest first.
type BatchListResponse struct {
	Batches []BatchSummary `json:"batches"`
}

// BatchDescribeRequest fetches a single batch by id.
type BatchDescribeRequest struct {
	ID string `json:"id"`
}

// BatchDescribeResponse contains a single batch when found.
type BatchDescribeResponse struct {
	Found bool          `json:"found"`
	Batch *BatchSummary `json:"batch,omitempty"`
}

// SignRequest signs a single completed batch.
type SignRequest struct {
	ID string `json:"id"`
}

// SignResponse reports the sign outcome.
type SignResponse struct {
	Signed  bool   `json:"signed"`
	Message string `json:"message"`
}

// SignAllRequest signs every completed batch.
type SignAllRequest struct{}

// SignAllResponse reports the number of batches signed.
type SignAllResponse struct {
	Signed int `json:"signed"`
}

// ClearSignedRequest removes signed batches.
type ClearSignedRequest struct{}

// ClearSignedResponse reports the number of removed batches.
type ClearSignedResponse struct {
	Removed int `json:"removed"`
}

// ClearAllRequest removes every batch regardless of status.
type ClearAllRequest struct{}

// ClearAllResponse reports the number of removed batches.
type ClearAllResponse struct {
	Removed int `json:"removed"`
}

// HistoryListRequest fetches persisted batches.
type HistoryListRequest struct {
	Statuses []string `json:"statuses"`
	Limit    int      `json:"limit"`
}

// HistoryListResponse contains persisted batches in stored order.
type HistoryListResponse struct {
	Batches []BatchSummary `json:"batches"`
}

// HistoryHealthRequest fetches aggregate history counts.
type HistoryHealthRequest struct{}

// HistoryHealthResponse reports batch counts by status.
type HistoryHealthResponse struct {
	Total     int `json:"total"`
	Uploading int `json:"uploading"`
	Completed int `json:"completed"`
	Signed    int `json:"signed"`
}

// DatabaseHealthRequest fetches detailed database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse reports database health information.
type DatabaseHealthResponse struct {
	DBPath           string   `json:"db_path"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	SchemaVersion    string   `json:"schema_version"`
	TableExists      bool     `json:"table_exists"`
	ColumnsPresent   []string `json:"columns_present"`
	MissingColumns   []string `json:"missing_columns"`
	IntegrityCheck   bool     `json:"integrity_check"`
	TotalBatches     int      `json:"total_batches"`
	Error            string   `json:"error"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
