package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"hopper/internal/batch"
	"hopper/internal/daemon"
	"hopper/internal/logging"
	"hopper/internal/logs"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Hopper", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun hopper stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func parseStatuses(values []string) []batch.Status {
	statuses := make([]batch.Status, 0, len(values))
	for _, value := range values {
		parsed, ok := batch.ParseStatus(value)
		if !ok {
			continue
		}
		statuses = append(statuses, parsed)
	}
	return statuses
}

func summarize(batches []*batch.Batch) []BatchSummary {
	out := make([]BatchSummary, 0, len(batches))
	for _, b := range batches {
		if b == nil {
			continue
		}
		out = append(out, FromBatch(b))
	}
	return out
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("watch start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "watching started"
	s.log().Info("watching started via IPC",
		logging.String(logging.FieldEventType, "watch_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("watch stop requested")
	if err := s.daemon.Stop(); err != nil {
		resp.Stopped = false
		resp.Message = err.Error()
		return nil
	}
	resp.Stopped = true
	resp.Message = "watching stopped"
	s.log().Info("watching stopped via IPC",
		logging.String(logging.FieldEventType, "watch_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.StartedAt = status.StartedAt
	resp.WatchFolder = status.WatchFolder
	resp.ActiveFolders = status.ActiveFolders
	resp.Uploading = status.Uploading
	resp.Completed = status.Completed
	resp.Signed = status.Signed
	resp.PID = status.PID
	resp.LockPath = status.LockFilePath
	resp.HistoryDBPath = status.HistoryDBPath
	resp.HistoryEnabled = status.HistoryEnabled
	resp.LogPath = status.LogPath
	return nil
}

func (s *service) BatchList(req BatchListRequest, resp *BatchListResponse) error {
	resp.Batches = summarize(s.daemon.Batches(parseStatuses(req.Statuses)))
	return nil
}

func (s *service) BatchDescribe(req BatchDescribeRequest, resp *BatchDescribeResponse) error {
	if req.ID == "" {
		return errors.New("batch describe requires an id")
	}
	b, ok := s.daemon.BatchByID(req.ID)
	if !ok {
		// Evicted or pre-restart batches may still exist in history.
		stored, err := s.daemon.HistoryGet(s.ctx, req.ID)
		if err != nil || stored == nil {
			resp.Found = false
			return nil
		}
		b = stored
	}
	summary := FromBatch(b)
	resp.Found = true
	resp.Batch = &summary
	return nil
}

func (s *service) Sign(req SignRequest, resp *SignResponse) error {
	if req.ID == "" {
		return errors.New("sign requires a batch id")
	}
	s.log().Debug("batch sign requested", logging.String(logging.FieldBatchID, req.ID))
	signed, message := s.daemon.Sign(req.ID)
	resp.Signed = signed
	resp.Message = message
	if signed {
		s.log().Info("batch signed",
			logging.String(logging.FieldEventType, "batch_sign"),
			logging.String(logging.FieldBatchID, req.ID))
	}
	return nil
}

func (s *service) SignAll(_ SignAllRequest, resp *SignAllResponse) error {
	s.log().Debug("sign all requested")
	signed := s.daemon.SignAll()
	resp.Signed = signed
	s.log().Info("completed batches signed",
		logging.String(logging.FieldEventType, "batch_sign_all"),
		logging.Int("signed_count", signed))
	return nil
}

func (s *service) ClearSigned(_ ClearSignedRequest, resp *ClearSignedResponse) error {
	s.log().Debug("clear signed requested")
	removed := s.daemon.ClearSigned()
	resp.Removed = removed
	s.log().Info("signed batches cleared",
		logging.String(logging.FieldEventType, "batch_clear_signed"),
		logging.Int("removed_count", removed))
	return nil
}

func (s *service) ClearAll(_ ClearAllRequest, resp *ClearAllResponse) error {
	s.log().Debug("clear all requested")
	removed := s.daemon.ClearAll()
	resp.Removed = removed
	s.log().Info("all batches cleared",
		logging.String(logging.FieldEventType, "batch_clear_all"),
		logging.Int("removed_count", removed))
	return nil
}

func (s *service) HistoryList(req HistoryListRequest, resp *HistoryListResponse) error {
	batches, err := s.daemon.HistoryList(s.ctx, req.Limit, parseStatuses(req.Statuses))
	if err != nil {
		return err
	}
	resp.Batches = summarize(batches)
	return nil
}

func (s *service) HistoryHealth(_ HistoryHealthRequest, resp *HistoryHealthResponse) error {
	summary, err := s.daemon.HistoryHealth(s.ctx)
	if err != nil {
		return err
	}
	resp.Total = summary.Total
	resp.Uploading = summary.Uploading
	resp.Completed = summary.Completed
	resp.Signed = summary.Signed
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.DatabaseHealth(s.ctx)
	if err != nil && health.Error == "" {
		return err
	}
	resp.DBPath = health.DBPath
	resp.DatabaseExists = health.DatabaseExists
	resp.DatabaseReadable = health.DatabaseReadable
	resp.SchemaVersion = health.SchemaVersion
	resp.TableExists = health.TableExists
	resp.ColumnsPresent = append(resp.ColumnsPresent, health.ColumnsPresent...)
	resp.MissingColumns = append(resp.MissingColumns, health.MissingColumns...)
	resp.IntegrityCheck = health.IntegrityCheck
	resp.TotalBatches = health.TotalBatches
	resp.Error = health.Error
	if err != nil {
		return err
	}
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
