package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"hopper/internal/batch"
	"hopper/internal/config"
	"hopper/internal/history"
	"hopper/internal/logging"
	"hopper/internal/notifications"
	"hopper/internal/session"
)

// ErrHistoryDisabled is returned for history operations when persistence is
// turned off in the configuration.
var ErrHistoryDisabled = errors.New("history persistence is disabled")

// Daemon coordinates the watch session and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *history.Store
	session  *session.Session
	notifier notifications.Service
	logPath  string

	lockPath string
	lock     *flock.Flock

	mu sync.Mutex
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool
	StartedAt      time.Time
	WatchFolder    string
	ActiveFolders  int
	Uploading      int
	Completed      int
	Signed         int
	PID            int
	LockFilePath   string
	HistoryDBPath  string
	HistoryEnabled bool
	LogPath        string
}

// New constructs a daemon with initialized dependencies. The history store
// may be nil when persistence is disabled.
func New(cfg *config.Config, store *history.Store, sess *session.Session, notifier notifications.Service, logger *slog.Logger, logPath string) (*Daemon, error) {
	if cfg == nil || sess == nil {
		return nil, errors.New("daemon requires config and session")
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := cfg.LockFilePath()
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		session:  sess,
		notifier: notifier,
		logPath:  logPath,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and begins the watch session.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session.Running() {
		return session.ErrAlreadyRunning
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another hopperd instance is already watching")
	}

	if err := d.session.Start(ctx); err != nil {
		if unlockErr := d.lock.Unlock(); unlockErr != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(unlockErr))
		}
		return err
	}

	d.logger.Info("hopper daemon started", logging.String("lock", d.lockPath))
	d.notifyAsync("session start notification failed", func(ctx context.Context) error {
		return d.notifier.SessionStarted(ctx, d.cfg.Watch.Folder)
	})
	return nil
}

// Stop ends the watch session and releases the daemon lock. Batches still
// uploading remain in the store and are never auto-completed afterwards.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.session.Stop(); err != nil {
		return err
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}

	d.logger.Info("hopper daemon stopped")
	d.notifyAsync("session stop notification failed", func(ctx context.Context) error {
		return d.notifier.SessionStopped(ctx)
	})
	return nil
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	if err := d.Stop(); err != nil && !errors.Is(err, session.ErrNotRunning) {
		d.logger.Warn("daemon close", logging.Error(err))
	}
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the watch session is active.
func (d *Daemon) Running() bool {
	return d.session.Running()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	snap := d.session.Snapshot()
	return Status{
		Running:        snap.Running,
		StartedAt:      snap.StartedAt,
		WatchFolder:    d.cfg.Watch.Folder,
		ActiveFolders:  snap.ActiveFolders,
		Uploading:      snap.Uploading,
		Completed:      snap.Completed,
		Signed:         snap.Signed,
		PID:            os.Getpid(),
		LockFilePath:   d.lockPath,
		HistoryDBPath:  d.cfg.Paths.HistoryDB,
		HistoryEnabled: d.cfg.History.Enabled && d.store != nil,
		LogPath:        d.logPath,
	}
}

// Batches returns live batches, optionally filtered by status.
func (d *Daemon) Batches(statuses []batch.Status) []*batch.Batch {
	return d.session.Batches(statuses...)
}

// BatchByID returns a copy of one live batch.
func (d *Daemon) BatchByID(id string) (*batch.Batch, bool) {
	return d.session.BatchByID(id)
}

// Sign marks a completed batch signed. The message explains refusals.
func (d *Daemon) Sign(id string) (bool, string) {
	if d.session.SignBatch(id) {
		return true, "batch signed"
	}
	if b, found := d.session.BatchByID(id); found {
		return false, fmt.Sprintf("batch is %s; only completed batches can be signed", b.Status)
	}
	return false, "batch not found"
}

// SignAll signs every completed batch and returns how many changed.
func (d *Daemon) SignAll() int {
	return d.session.SignAll()
}

// ClearSigned removes signed batches from the live store.
func (d *Daemon) ClearSigned() int {
	return d.session.ClearSigned()
}

// ClearAll removes every batch from the live store.
func (d *Daemon) ClearAll() int {
	return d.session.ClearAll()
}

// HistoryList returns stored batches, optionally filtered and limited.
func (d *Daemon) HistoryList(ctx context.Context, limit int, statuses []batch.Status) ([]*batch.Batch, error) {
	if d.store == nil {
		return nil, ErrHistoryDisabled
	}
	return d.store.List(ctx, limit, statuses...)
}

// HistoryGet looks up a single stored batch. Returns (nil, nil) when the id
// is unknown.
func (d *Daemon) HistoryGet(ctx context.Context, id string) (*batch.Batch, error) {
	if d.store == nil {
		return nil, ErrHistoryDisabled
	}
	return d.store.GetByID(ctx, id)
}

// HistoryHealth returns aggregate history diagnostics.
func (d *Daemon) HistoryHealth(ctx context.Context) (history.Summary, error) {
	if d.store == nil {
		return history.Summary{}, ErrHistoryDisabled
	}
	return d.store.Health(ctx)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (history.DatabaseHealth, error) {
	if d.store == nil {
		return history.DatabaseHealth{}, ErrHistoryDisabled
	}
	return d.store.CheckHealth(ctx)
}

// RestoreHistory seeds the in-memory batch list from stored history. Call
// before the IPC server starts handing out state.
func (d *Daemon) RestoreHistory(ctx context.Context) error {
	if d.store == nil {
		return nil
	}
	batches, err := d.store.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("load batch history: %w", err)
	}
	d.session.Seed(batches)
	if len(batches) > 0 {
		d.logger.Info("batch history restored", logging.Int("batch_count", len(batches)))
	}
	return nil
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// notifyAsync dispatches a push without holding up the caller. Delivery
// failures are logged, never propagated.
func (d *Daemon) notifyAsync(failureMsg string, send func(context.Context) error) {
	go func() {
		if err := send(context.Background()); err != nil {
			logging.WarnWithContext(d.logger, failureMsg, "notification_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "push notification was not delivered"),
				logging.String(logging.FieldErrorHint, "verify ntfy topic and network access"),
			)
		}
	}()
}
