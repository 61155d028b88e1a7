package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"hopper/internal/batch"
	"hopper/internal/config"
	"hopper/internal/logging"
)

const (
	// completeTimeout is the fixed inactivity window after which an active
	// folder is deemed finished. Injectable in tests, never configuration.
	completeTimeout = 30 * time.Second
	// checkInterval is the completion checker's poll cadence, bounding the
	// latency between actual inactivity and batch finalization.
	checkInterval = time.Second
)

var (
	ErrAlreadyRunning     = errors.New("session already running")
	ErrNotRunning         = errors.New("session not running")
	ErrNoWatchFolder      = errors.New("watch folder not configured")
	ErrWatchFolderMissing = errors.New("watch folder does not exist")
)

// Notifier receives the session's outbound events. Calls happen outside the
// state lock and must tolerate concurrency.
type Notifier interface {
	BatchStarted(folder string)
	BatchCompleted(folder string, fileCount int)
}

// Persister stores the full batch list after a status-changing mutation.
// Failures are logged and swallowed; the in-memory state stays authoritative.
type Persister interface {
	SaveBatches(batches []*batch.Batch) error
}

// Snapshot is the aggregate state handed to status queries.
type Snapshot struct {
	Running       bool
	StartedAt     time.Time
	ActiveFolders int
	Uploading     int
	Completed     int
	Signed        int
	Batches       []*batch.Batch
}

// Session owns the watch state: the per-folder trackers, the bounded batch
// store, the run flag, the session start time, and the watcher handle. Every
// read or mutation of that state serializes through one exclusive mutex.
type Session struct {
	cfg       *config.Config
	logger    *slog.Logger
	source    Source
	notifier  Notifier
	persister Persister
	filter    *eventFilter

	clock   func() time.Time
	timeout time.Duration
	tick    time.Duration

	mu        sync.Mutex
	running   bool
	startedAt time.Time
	trackers  map[string]*folderTracker
	store     *batchStore
	watch     Watch

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a stopped session. notifier and persister may each be nil to
// disable the corresponding side effect; cfg must be non-nil.
func New(cfg *config.Config, source Source, notifier Notifier, persister Persister, logger *slog.Logger) *Session {
	return &Session{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "session"),
		source:    source,
		notifier:  notifier,
		persister: persister,
		filter:    newEventFilter(cfg.Watch),
		clock:     time.Now,
		timeout:   completeTimeout,
		tick:      checkInterval,
		trackers:  make(map[string]*folderTracker),
		store:     newBatchStore(),
	}
}

// Start installs the filesystem watcher and spawns the completion checker.
// Precondition failures (already running, unconfigured or missing folder,
// watcher registration) leave no partial state behind.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}
	folder := s.cfg.Watch.Folder
	if folder == "" {
		return ErrNoWatchFolder
	}
	if _, err := os.Stat(folder); err != nil {
		return ErrWatchFolderMissing
	}
	if s.source == nil {
		return errors.New("watch source unavailable")
	}

	watch, err := s.source.Watch(folder, s.cfg.Watch.WatchSubdirs, s.handleChange)
	if err != nil {
		return fmt.Errorf("install watcher: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.watch = watch
	s.cancel = cancel
	s.running = true
	s.startedAt = s.clock()

	s.wg.Add(1)
	go s.checkLoop(runCtx)

	s.logger.Info("session started",
		logging.String(logging.FieldFolder, folder),
		logging.Bool("recursive", s.cfg.Watch.WatchSubdirs),
	)
	return nil
}

// Stop uninstalls the watcher and discards every live tracker. Batches still
// Uploading stay in the store frozen at their accumulated file set; stopping
// never completes them.
func (s *Session) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	watch := s.watch
	cancel := s.cancel
	s.watch = nil
	s.cancel = nil
	s.running = false
	s.startedAt = time.Time{}
	s.trackers = make(map[string]*folderTracker)
	s.mu.Unlock()

	if watch != nil {
		if err := watch.Close(); err != nil {
			s.logger.Warn("watcher close failed", logging.Error(err))
		}
	}
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.logger.Info("session stopped")
	return nil
}

// Close stops the session if it is running.
func (s *Session) Close() {
	if err := s.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
		s.logger.Warn("session close", logging.Error(err))
	}
}

// Running reports whether a watch session is active.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Session) checkLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(s.clock())
		}
	}
}

// handleChange is the delivery callback handed to the Source. It runs on the
// source's goroutine.
func (s *Session) handleChange(change Change) {
	for _, event := range s.filter.accept(change) {
		s.recordEvent(event)
	}
}

func (s *Session) recordEvent(event fileEvent) {
	now := s.clock()

	s.mu.Lock()
	if !s.running {
		// The source can deliver briefly after stop; drop trailing events.
		s.mu.Unlock()
		return
	}
	batchID, first := s.record(event, now)
	s.mu.Unlock()

	s.logger.Debug("upload activity",
		logging.String(logging.FieldBatchID, batchID),
		logging.String(logging.FieldFolder, event.Folder),
		logging.String(logging.FieldFile, event.Name),
	)
	if first {
		s.logger.Info("batch started",
			logging.String(logging.FieldBatchID, batchID),
			logging.String(logging.FieldFolder, event.Folder),
		)
		if s.notifier != nil {
			s.notifier.BatchStarted(event.Folder)
		}
	}
}

// record updates the tracker registry and batch store for one qualifying
// event. Caller holds s.mu.
func (s *Session) record(event fileEvent, now time.Time) (batchID string, first bool) {
	tracker, ok := s.trackers[event.Folder]
	if ok {
		tracker.addFile(event.Name, event.Size)
		tracker.lastActivity = now
		first = !tracker.notifiedStart
		tracker.notifiedStart = true
	} else {
		b := batch.New(event.Folder, now)
		tracker = &folderTracker{
			lastActivity:  now,
			notifiedStart: true,
			batchID:       b.ID,
		}
		tracker.addFile(event.Name, event.Size)
		s.trackers[event.Folder] = tracker
		s.store.insertFront(b)
		first = true
	}

	// The batch mirrors the tracker's file set while it is alive. A batch
	// already evicted by the store cap simply stops mirroring.
	if b := s.store.byID(tracker.batchID); b != nil {
		b.Files = tracker.fileSet()
	}
	return tracker.batchID, first
}

// sweep promotes every folder idle for at least the timeout. Persistence and
// notification for each promoted folder happen with the lock released; the
// lock is retaken before the next one.
func (s *Session) sweep(now time.Time) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}

	var stale []string
	for folder, tracker := range s.trackers {
		if now.Sub(tracker.lastActivity) >= s.timeout {
			stale = append(stale, folder)
		}
	}

	for _, folder := range stale {
		tracker, ok := s.trackers[folder]
		if !ok {
			continue
		}
		delete(s.trackers, folder)

		fileCount := len(tracker.files)
		if b := s.store.byID(tracker.batchID); b != nil {
			b.Status = batch.StatusCompleted
			completed := now
			b.CompletedAt = &completed
			b.Files = tracker.fileSet()
		}
		var persist []*batch.Batch
		if s.persistEnabled() {
			persist = s.store.snapshot()
		}
		s.mu.Unlock()

		s.logger.Info("batch completed",
			logging.String(logging.FieldBatchID, tracker.batchID),
			logging.String(logging.FieldFolder, folder),
			logging.Int("files", fileCount),
		)
		s.persist(persist)
		if s.notifier != nil {
			s.notifier.BatchCompleted(folder, fileCount)
		}

		s.mu.Lock()
	}
	s.mu.Unlock()
}

// SignBatch marks a completed batch signed. It reports false without mutating
// anything when the batch is missing or not currently completed.
func (s *Session) SignBatch(id string) bool {
	now := s.clock()

	s.mu.Lock()
	b := s.store.byID(id)
	if b == nil || b.Status != batch.StatusCompleted {
		s.mu.Unlock()
		return false
	}
	b.Status = batch.StatusSigned
	signed := now
	b.SignedAt = &signed
	folder := b.Folder
	var persist []*batch.Batch
	if s.persistEnabled() {
		persist = s.store.snapshot()
	}
	s.mu.Unlock()

	s.logger.Info("batch signed",
		logging.String(logging.FieldBatchID, id),
		logging.String(logging.FieldFolder, folder),
	)
	s.persist(persist)
	return true
}

// SignAll signs every completed batch and returns how many changed.
func (s *Session) SignAll() int {
	now := s.clock()

	s.mu.Lock()
	signedCount := 0
	for _, b := range s.store.items {
		if b.Status == batch.StatusCompleted {
			b.Status = batch.StatusSigned
			signed := now
			b.SignedAt = &signed
			signedCount++
		}
	}
	var persist []*batch.Batch
	if signedCount > 0 && s.persistEnabled() {
		persist = s.store.snapshot()
	}
	s.mu.Unlock()

	if signedCount > 0 {
		s.logger.Info("batches signed", logging.Int("count", signedCount))
	}
	s.persist(persist)
	return signedCount
}

// ClearSigned removes signed batches from the store.
func (s *Session) ClearSigned() int {
	return s.clear(func(b *batch.Batch) bool { return b.Status == batch.StatusSigned })
}

// ClearAll empties the store regardless of status.
func (s *Session) ClearAll() int {
	return s.clear(func(*batch.Batch) bool { return true })
}

func (s *Session) clear(match func(*batch.Batch) bool) int {
	s.mu.Lock()
	removed := s.store.removeIf(match)
	var persist []*batch.Batch
	if removed > 0 && s.persistEnabled() {
		persist = s.store.snapshot()
	}
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Info("batches cleared", logging.Int("count", removed))
	}
	s.persist(persist)
	return removed
}

// Snapshot returns the aggregate state for status displays.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	uploading, completed, signed := s.store.counts()
	return Snapshot{
		Running:       s.running,
		StartedAt:     s.startedAt,
		ActiveFolders: len(s.trackers),
		Uploading:     uploading,
		Completed:     completed,
		Signed:        signed,
		Batches:       s.store.snapshot(),
	}
}

// Batches returns the stored batches newest-first, optionally filtered by
// status.
func (s *Session) Batches(statuses ...batch.Status) []*batch.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(statuses) == 0 {
		return s.store.snapshot()
	}
	allowed := make(map[batch.Status]struct{}, len(statuses))
	for _, status := range statuses {
		allowed[status] = struct{}{}
	}
	out := make([]*batch.Batch, 0, s.store.size())
	for _, b := range s.store.items {
		if _, ok := allowed[b.Status]; ok {
			out = append(out, b.Clone())
		}
	}
	return out
}

// BatchByID returns a copy of one batch.
func (s *Session) BatchByID(id string) (*batch.Batch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.store.byID(id)
	if b == nil {
		return nil, false
	}
	return b.Clone(), true
}

// Seed replaces the in-memory store with previously persisted batches,
// newest-first, clipped at the store cap. Call before Start.
func (s *Session) Seed(batches []*batch.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.replace(batches)
}

func (s *Session) persistEnabled() bool {
	return s.persister != nil && s.cfg.History.Enabled
}

// persist runs outside the lock; nil means persistence was not requested.
func (s *Session) persist(batches []*batch.Batch) {
	if batches == nil || s.persister == nil {
		return
	}
	if err := s.persister.SaveBatches(batches); err != nil {
		logging.WarnWithContext(s.logger, "history save failed; keeping in-memory state", "history_save_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history database path and permissions"),
			logging.String(logging.FieldImpact, "batch history may be stale on next start"),
		)
	}
}
