// Package daemonrun assembles and runs the hopperd process: logging, batch
// history, the watch session, the IPC server, and signal-driven shutdown.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"hopper/internal/config"
	"hopper/internal/daemon"
	"hopper/internal/history"
	"hopper/internal/ipc"
	"hopper/internal/logging"
	"hopper/internal/notifications"
	"hopper/internal/session"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the hopper daemon runtime loop and blocks until SIGINT or
// SIGTERM arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("hopperd-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update hopperd.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "hopperd-*.log", Exclude: []string{logPath}},
	)

	if err := writePIDFile(cfg.Paths.PIDFile); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(cfg.Paths.PIDFile)

	// A broken history database degrades to an in-memory session rather than
	// keeping the daemon down.
	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "open history store", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "batches will not survive daemon restarts"),
				logging.String(logging.FieldErrorHint, "run 'hopper history health' to inspect the database"))
			store = nil
		}
	}
	defer func() {
		if store != nil {
			_ = store.Close()
		}
	}()

	notifier := notifications.NewService(cfg)
	sess := session.New(
		cfg,
		session.NewFSNotifySource(logger),
		daemon.NewSessionNotifier(notifier, logger),
		daemon.NewHistoryPersister(store),
		logger,
	)

	d, err := daemon.New(cfg, store, sess, notifier, logger, logPath)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.RestoreHistory(signalCtx); err != nil {
		logging.WarnWithContext(logger, "restore batch history", "history_restore_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "previous batches are missing from the live session"),
			logging.String(logging.FieldErrorHint, "run 'hopper history health' to inspect the database"))
	}

	ipcServer, err := ipc.NewServer(signalCtx, cfg.Paths.Socket, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logging.WarnWithContext(logger, "watch start failed", "watch_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the watch folder setting, then run 'hopper start'"),
			logging.String(logging.FieldImpact, "uploads are not being watched"),
		)
	}

	<-signalCtx.Done()
	logger.Info("hopper daemon shutting down")
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "hopperd.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
