package session

import "hopper/internal/batch"

// maxStoredBatches caps the in-memory store; the oldest entry is evicted
// when a new batch would push past the cap.
const maxStoredBatches = 100

// batchStore holds batches newest-first. It performs no locking of its own;
// every call happens under the owning Session's mutex.
type batchStore struct {
	items []*batch.Batch
}

func newBatchStore() *batchStore {
	return &batchStore{}
}

func (s *batchStore) insertFront(b *batch.Batch) {
	s.items = append(s.items, nil)
	copy(s.items[1:], s.items)
	s.items[0] = b
	if len(s.items) > maxStoredBatches {
		for i := maxStoredBatches; i < len(s.items); i++ {
			s.items[i] = nil
		}
		s.items = s.items[:maxStoredBatches]
	}
}

func (s *batchStore) byID(id string) *batch.Batch {
	for _, b := range s.items {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// removeIf drops every batch the predicate matches and reports how many were
// removed. Order of the survivors is preserved.
func (s *batchStore) removeIf(match func(*batch.Batch) bool) int {
	kept := s.items[:0]
	for _, b := range s.items {
		if match(b) {
			continue
		}
		kept = append(kept, b)
	}
	removed := len(s.items) - len(kept)
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = nil
	}
	s.items = kept
	return removed
}

// snapshot deep-copies the store contents, newest-first. The result is never
// nil so an emptied store still round-trips to persistence as an empty list.
func (s *batchStore) snapshot() []*batch.Batch {
	out := make([]*batch.Batch, len(s.items))
	for i, b := range s.items {
		out[i] = b.Clone()
	}
	return out
}

// replace resets the store from an already ordered list, clipping at the cap.
func (s *batchStore) replace(batches []*batch.Batch) {
	limit := len(batches)
	if limit > maxStoredBatches {
		limit = maxStoredBatches
	}
	s.items = batch.CloneAll(batches[:limit])
}

func (s *batchStore) size() int {
	return len(s.items)
}

func (s *batchStore) counts() (uploading, completed, signed int) {
	for _, b := range s.items {
		switch b.Status {
		case batch.StatusUploading:
			uploading++
		case batch.StatusCompleted:
			completed++
		case batch.StatusSigned:
			signed++
		}
	}
	return uploading, completed, signed
}
