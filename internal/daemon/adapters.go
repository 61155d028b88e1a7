package daemon

import (
	"context"
	"log/slog"

	"hopper/internal/batch"
	"hopper/internal/history"
	"hopper/internal/logging"
	"hopper/internal/notifications"
	"hopper/internal/session"
)

// NewSessionNotifier adapts the notifications service to the session's
// callback interface. Pushes are dispatched on their own goroutines so slow
// ntfy calls never stall event handling or the completion checker.
func NewSessionNotifier(svc notifications.Service, logger *slog.Logger) session.Notifier {
	if svc == nil {
		return nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &sessionNotifier{svc: svc, logger: logger}
}

type sessionNotifier struct {
	svc    notifications.Service
	logger *slog.Logger
}

func (n *sessionNotifier) BatchStarted(folder string) {
	go func() {
		if err := n.svc.BatchStarted(context.Background(), folder); err != nil {
			logging.WarnWithContext(n.logger, "batch start notification failed", "notification_failed",
				logging.Error(err),
				logging.String(logging.FieldFolder, folder),
				logging.String(logging.FieldImpact, "push notification was not delivered"),
				logging.String(logging.FieldErrorHint, "verify ntfy topic and network access"),
			)
		}
	}()
}

func (n *sessionNotifier) BatchCompleted(folder string, fileCount int) {
	go func() {
		if err := n.svc.BatchCompleted(context.Background(), folder, fileCount); err != nil {
			logging.WarnWithContext(n.logger, "batch complete notification failed", "notification_failed",
				logging.Error(err),
				logging.String(logging.FieldFolder, folder),
				logging.String(logging.FieldImpact, "push notification was not delivered"),
				logging.String(logging.FieldErrorHint, "verify ntfy topic and network access"),
			)
		}
	}()
}

// NewHistoryPersister adapts the history store to the session's persister
// interface. A nil store yields a nil persister, which disables persistence.
func NewHistoryPersister(store *history.Store) session.Persister {
	if store == nil {
		return nil
	}
	return &historyPersister{store: store}
}

type historyPersister struct {
	store *history.Store
}

func (p *historyPersister) SaveBatches(batches []*batch.Batch) error {
	return p.store.SaveBatches(context.Background(), batches)
}
