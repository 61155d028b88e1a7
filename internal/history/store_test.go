package history_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"hopper/internal/batch"
	"hopper/internal/history"
	"hopper/internal/testsupport"
)

func makeBatch(folder string, status batch.Status) *batch.Batch {
	b := batch.New(folder, time.Now().UTC())
	b.Status = status
	b.Files = []batch.File{{Name: "clip.mp4", Size: 1024}}
	if status != batch.StatusUploading {
		completed := b.StartedAt.Add(45 * time.Second)
		b.CompletedAt = &completed
	}
	if status == batch.StatusSigned {
		signed := b.StartedAt.Add(2 * time.Minute)
		b.SignedAt = &signed
	}
	return b
}

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	saved := makeBatch("/uploads/session-a", batch.StatusCompleted)
	if err := store.SaveBatches(ctx, []*batch.Batch{saved}); err != nil {
		t.Fatalf("SaveBatches failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Folder != "/uploads/session-a" {
		t.Fatalf("unexpected fetched batch: %#v", fetched)
	}
	if fetched.Status != batch.StatusCompleted {
		t.Fatalf("expected completed status, got %s", fetched.Status)
	}

	missing, err := store.GetByID(ctx, "nope")
	if err != nil {
		t.Fatalf("GetByID missing failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown id, got %#v", missing)
	}
}

func TestSaveBatchesReplacesPrevious(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := []*batch.Batch{
		makeBatch("/uploads/a", batch.StatusSigned),
		makeBatch("/uploads/b", batch.StatusCompleted),
		makeBatch("/uploads/c", batch.StatusUploading),
	}
	if err := store.SaveBatches(ctx, first); err != nil {
		t.Fatalf("SaveBatches failed: %v", err)
	}

	second := []*batch.Batch{makeBatch("/uploads/d", batch.StatusCompleted)}
	if err := store.SaveBatches(ctx, second); err != nil {
		t.Fatalf("second SaveBatches failed: %v", err)
	}

	batches, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(batches) != 1 || batches[0].Folder != "/uploads/d" {
		t.Fatalf("expected only the new batch, got %#v", batches)
	}

	// An empty save wipes the table.
	if err := store.SaveBatches(ctx, nil); err != nil {
		t.Fatalf("empty SaveBatches failed: %v", err)
	}
	batches, err = store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List after wipe failed: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("expected empty history, got %d", len(batches))
	}
}

func TestSaveBatchesPreservesOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	var saved []*batch.Batch
	for i := 0; i < 5; i++ {
		saved = append(saved, makeBatch(fmt.Sprintf("/uploads/f%d", i), batch.StatusCompleted))
	}
	if err := store.SaveBatches(ctx, saved); err != nil {
		t.Fatalf("SaveBatches failed: %v", err)
	}

	batches, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(batches) != len(saved) {
		t.Fatalf("expected %d batches, got %d", len(saved), len(batches))
	}
	for i, b := range batches {
		if b.ID != saved[i].ID {
			t.Fatalf("position %d: expected %s, got %s", i, saved[i].ID, b.ID)
		}
	}
}

func TestListSupportsStatusFilterAndLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	saved := []*batch.Batch{
		makeBatch("/uploads/a", batch.StatusSigned),
		makeBatch("/uploads/b", batch.StatusCompleted),
		makeBatch("/uploads/c", batch.StatusSigned),
		makeBatch("/uploads/d", batch.StatusUploading),
	}
	if err := store.SaveBatches(ctx, saved); err != nil {
		t.Fatalf("SaveBatches failed: %v", err)
	}

	signed, err := store.List(ctx, 0, batch.StatusSigned)
	if err != nil {
		t.Fatalf("filtered List failed: %v", err)
	}
	if len(signed) != 2 || signed[0].Folder != "/uploads/a" || signed[1].Folder != "/uploads/c" {
		t.Fatalf("unexpected signed batches: %#v", signed)
	}

	mixed, err := store.List(ctx, 0, batch.StatusSigned, batch.StatusCompleted)
	if err != nil {
		t.Fatalf("multi-status List failed: %v", err)
	}
	if len(mixed) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(mixed))
	}

	limited, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("limited List failed: %v", err)
	}
	if len(limited) != 2 || limited[0].Folder != "/uploads/a" {
		t.Fatalf("unexpected limited batches: %#v", limited)
	}
}

func TestSaveBatchesRoundTripsFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	saved := makeBatch("/uploads/full", batch.StatusSigned)
	saved.Files = []batch.File{
		{Name: "one.mp4", Size: 100},
		{Name: "two.mkv", Size: 2048},
	}
	if err := store.SaveBatches(ctx, []*batch.Batch{saved}); err != nil {
		t.Fatalf("SaveBatches failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(fetched.Files) != 2 || fetched.Files[0].Name != "one.mp4" || fetched.Files[1].Size != 2048 {
		t.Fatalf("files did not round-trip: %#v", fetched.Files)
	}
	if !fetched.StartedAt.Equal(saved.StartedAt) {
		t.Fatalf("started_at mismatch: %v vs %v", fetched.StartedAt, saved.StartedAt)
	}
	if fetched.CompletedAt == nil || !fetched.CompletedAt.Equal(*saved.CompletedAt) {
		t.Fatalf("completed_at mismatch: %v vs %v", fetched.CompletedAt, saved.CompletedAt)
	}
	if fetched.SignedAt == nil || !fetched.SignedAt.Equal(*saved.SignedAt) {
		t.Fatalf("signed_at mismatch: %v vs %v", fetched.SignedAt, saved.SignedAt)
	}
}

func TestDeleteSignedAndAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	saved := []*batch.Batch{
		makeBatch("/uploads/a", batch.StatusSigned),
		makeBatch("/uploads/b", batch.StatusCompleted),
		makeBatch("/uploads/c", batch.StatusSigned),
	}
	if err := store.SaveBatches(ctx, saved); err != nil {
		t.Fatalf("SaveBatches failed: %v", err)
	}

	removed, err := store.DeleteSigned(ctx)
	if err != nil {
		t.Fatalf("DeleteSigned failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	remaining, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Status != batch.StatusCompleted {
		t.Fatalf("unexpected survivors: %#v", remaining)
	}

	removed, err = store.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
}

func TestHealthSummaries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	saved := []*batch.Batch{
		makeBatch("/uploads/a", batch.StatusSigned),
		makeBatch("/uploads/b", batch.StatusCompleted),
		makeBatch("/uploads/c", batch.StatusCompleted),
		makeBatch("/uploads/d", batch.StatusUploading),
	}
	if err := store.SaveBatches(ctx, saved); err != nil {
		t.Fatalf("SaveBatches failed: %v", err)
	}

	summary, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if summary.Total != 4 || summary.Signed != 1 || summary.Completed != 2 || summary.Uploading != 1 {
		t.Fatalf("unexpected summary: %#v", summary)
	}
}

func TestCheckHealthReportsDiagnostics(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if err := store.SaveBatches(ctx, []*batch.Batch{makeBatch("/uploads/a", batch.StatusCompleted)}); err != nil {
		t.Fatalf("SaveBatches failed: %v", err)
	}

	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists {
		t.Fatalf("expected healthy database, got %#v", health)
	}
	if len(health.MissingColumns) != 0 {
		t.Fatalf("expected no missing columns, got %v", health.MissingColumns)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass")
	}
	if health.TotalBatches != 1 {
		t.Fatalf("expected 1 batch, got %d", health.TotalBatches)
	}
}

func TestReopenKeepsData(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	ctx := context.Background()
	saved := makeBatch("/uploads/persist", batch.StatusSigned)
	if err := first.SaveBatches(ctx, []*batch.Batch{saved}); err != nil {
		t.Fatalf("SaveBatches failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer second.Close()

	batches, err := second.List(ctx, 0)
	if err != nil {
		t.Fatalf("List after reopen failed: %v", err)
	}
	if len(batches) != 1 || batches[0].ID != saved.ID {
		t.Fatalf("expected persisted batch, got %#v", batches)
	}
}
