package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hopper/internal/batch"
)

const batchColumns = "id, folder, status, files_json, started_at, completed_at, signed_at, position"

// SaveBatches replaces the stored history with the given batch list. The
// slice order is preserved so reads come back newest first, matching the
// daemon's in-memory ordering.
func (s *Store) SaveBatches(ctx context.Context, batches []*batch.Batch) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin save tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM batches`); err != nil {
			return fmt.Errorf("clear batches: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO batches (`+batchColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for position, b := range batches {
			if b == nil {
				continue
			}
			filesJSON, err := json.Marshal(b.Files)
			if err != nil {
				return fmt.Errorf("marshal files for %s: %w", b.ID, err)
			}
			if _, err := stmt.ExecContext(ctx,
				b.ID,
				b.Folder,
				string(b.Status),
				string(filesJSON),
				b.StartedAt.UTC().Format(time.RFC3339Nano),
				nullableTime(b.CompletedAt),
				nullableTime(b.SignedAt),
				position,
			); err != nil {
				return fmt.Errorf("insert batch %s: %w", b.ID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit save: %w", err)
		}
		return nil
	})
}

// List returns stored batches newest first, optionally filtered by status.
// A limit of zero or less returns everything.
func (s *Store) List(ctx context.Context, limit int, statuses ...batch.Status) ([]*batch.Batch, error) {
	ctx = ensureContext(ctx)

	query := `SELECT ` + batchColumns + ` FROM batches`
	args := make([]any, 0, len(statuses)+1)
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += ` ORDER BY position`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []*batch.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// GetByID fetches a stored batch by identifier.
func (s *Store) GetByID(ctx context.Context, id string) (*batch.Batch, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = ?`, id)
	b, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// DeleteSigned removes only signed batches from the history.
func (s *Store) DeleteSigned(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE status = ?`, string(batch.StatusSigned))
		if err != nil {
			return fmt.Errorf("delete signed: %w", err)
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

// DeleteAll removes every stored batch.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM batches`)
		if err != nil {
			return fmt.Errorf("delete all: %w", err)
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

func scanBatch(scanner interface{ Scan(dest ...any) error }) (*batch.Batch, error) {
	var (
		id         string
		folder     string
		statusStr  string
		filesJSON  sql.NullString
		startedRaw string
		completed  sql.NullString
		signed     sql.NullString
		position   int
	)
	if err := scanner.Scan(&id, &folder, &statusStr, &filesJSON, &startedRaw, &completed, &signed, &position); err != nil {
		return nil, err
	}

	b := &batch.Batch{
		ID:     id,
		Folder: folder,
		Status: batch.Status(statusStr),
	}
	if filesJSON.Valid && filesJSON.String != "" {
		if err := json.Unmarshal([]byte(filesJSON.String), &b.Files); err != nil {
			return nil, fmt.Errorf("decode files for %s: %w", id, err)
		}
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		b.StartedAt = started
	}
	if completed.Valid {
		if t, err := parseTimeString(completed.String); err == nil {
			b.CompletedAt = &t
		}
	}
	if signed.Valid {
		if t, err := parseTimeString(signed.String); err == nil {
			b.SignedAt = &t
		}
	}
	return b, nil
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
