package session

import (
	"fmt"
	"testing"
	"time"

	"hopper/internal/batch"
)

func TestStoreInsertFrontOrder(t *testing.T) {
	store := newBatchStore()
	now := time.Now()
	first := batch.New("/up/a", now)
	second := batch.New("/up/b", now)
	store.insertFront(first)
	store.insertFront(second)

	if store.size() != 2 {
		t.Fatalf("size = %d, want 2", store.size())
	}
	if store.items[0].ID != second.ID || store.items[1].ID != first.ID {
		t.Fatal("expected newest batch first")
	}
}

func TestStoreCapEvictsOldest(t *testing.T) {
	store := newBatchStore()
	now := time.Now()
	var oldest, newest string
	for i := 0; i < maxStoredBatches+5; i++ {
		b := batch.New(fmt.Sprintf("/up/f%03d", i), now)
		if i == 0 {
			oldest = b.ID
		}
		newest = b.ID
		store.insertFront(b)
	}

	if store.size() != maxStoredBatches {
		t.Fatalf("size = %d, want %d", store.size(), maxStoredBatches)
	}
	if store.byID(oldest) != nil {
		t.Error("oldest batch should have been evicted")
	}
	if store.byID(newest) == nil {
		t.Error("newest batch should remain")
	}
	if store.items[0].ID != newest {
		t.Error("newest batch should be at the front")
	}
}

func TestStoreRemoveIf(t *testing.T) {
	store := newBatchStore()
	now := time.Now()
	a := batch.New("/up/a", now)
	b := batch.New("/up/b", now)
	b.Status = batch.StatusSigned
	c := batch.New("/up/c", now)
	for _, item := range []*batch.Batch{a, b, c} {
		store.insertFront(item)
	}

	removed := store.removeIf(func(item *batch.Batch) bool { return item.Status == batch.StatusSigned })
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if store.size() != 2 || store.byID(b.ID) != nil {
		t.Fatal("signed batch should be gone")
	}
	if store.items[0].ID != c.ID || store.items[1].ID != a.ID {
		t.Fatal("survivor order should be preserved")
	}
}

func TestStoreReplaceClipsAtCap(t *testing.T) {
	store := newBatchStore()
	now := time.Now()
	var batches []*batch.Batch
	for i := 0; i < maxStoredBatches+20; i++ {
		batches = append(batches, batch.New(fmt.Sprintf("/up/f%03d", i), now))
	}

	store.replace(batches)
	if store.size() != maxStoredBatches {
		t.Fatalf("size = %d, want %d", store.size(), maxStoredBatches)
	}
	if store.items[0].ID != batches[0].ID {
		t.Error("replace should keep the given order from the front")
	}

	store.replace(nil)
	if store.size() != 0 {
		t.Fatalf("size after empty replace = %d, want 0", store.size())
	}
}

func TestStoreSnapshotIsDetached(t *testing.T) {
	store := newBatchStore()
	b := batch.New("/up/a", time.Now())
	b.Files = []batch.File{{Name: "a.mp4", Size: 1}}
	store.insertFront(b)

	snap := store.snapshot()
	if len(snap) != 1 {
		t.Fatalf("snapshot len = %d, want 1", len(snap))
	}
	snap[0].Status = batch.StatusSigned
	snap[0].Files[0].Name = "mutated"

	if store.items[0].Status != batch.StatusUploading || store.items[0].Files[0].Name != "a.mp4" {
		t.Fatal("snapshot mutation leaked into the store")
	}
}

func TestStoreCounts(t *testing.T) {
	store := newBatchStore()
	now := time.Now()
	for i := 0; i < 3; i++ {
		store.insertFront(batch.New(fmt.Sprintf("/up/u%d", i), now))
	}
	completed := batch.New("/up/c", now)
	completed.Status = batch.StatusCompleted
	store.insertFront(completed)
	signed := batch.New("/up/s", now)
	signed.Status = batch.StatusSigned
	store.insertFront(signed)

	uploading, complete, signedCount := store.counts()
	if uploading != 3 || complete != 1 || signedCount != 1 {
		t.Fatalf("counts = (%d, %d, %d), want (3, 1, 1)", uploading, complete, signedCount)
	}
}
