// Package historyaccess provides batch history operations that work whether
// the daemon is running or not. IPC-backed access goes through the daemon so
// clears also update the live session; store-backed access reads the SQLite
// history directly when no daemon is reachable.
package historyaccess

import (
	"context"

	"hopper/internal/batch"
	"hopper/internal/history"
	"hopper/internal/ipc"
)

// Access provides history operations regardless of IPC or direct store backing.
type Access interface {
	List(ctx context.Context, limit int, statuses []string) ([]ipc.BatchSummary, error)
	Describe(ctx context.Context, id string) (*ipc.BatchSummary, error)
	ClearSigned(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
	Health(ctx context.Context) (ipc.HistoryHealthResponse, error)
	DatabaseHealth(ctx context.Context) (ipc.DatabaseHealthResponse, error)
}

// NewIPCAccess returns an Access backed by daemon IPC.
func NewIPCAccess(client *ipc.Client) Access {
	return &ipcAccess{client: client}
}

// NewStoreAccess returns an Access backed by direct DB access.
func NewStoreAccess(store *history.Store) Access {
	return &storeAccess{store: store}
}

type ipcAccess struct {
	client *ipc.Client
}

func (a *ipcAccess) List(_ context.Context, limit int, statuses []string) ([]ipc.BatchSummary, error) {
	resp, err := a.client.HistoryList(ipc.HistoryListRequest{Statuses: statuses, Limit: limit})
	if err != nil {
		return nil, err
	}
	return resp.Batches, nil
}

func (a *ipcAccess) Describe(_ context.Context, id string) (*ipc.BatchSummary, error) {
	resp, err := a.client.BatchDescribe(id)
	if err != nil {
		return nil, err
	}
	if resp == nil || !resp.Found {
		return nil, nil
	}
	return resp.Batch, nil
}

func (a *ipcAccess) ClearSigned(_ context.Context) (int64, error) {
	resp, err := a.client.ClearSigned()
	if err != nil {
		return 0, err
	}
	return int64(resp.Removed), nil
}

func (a *ipcAccess) ClearAll(_ context.Context) (int64, error) {
	resp, err := a.client.ClearAll()
	if err != nil {
		return 0, err
	}
	return int64(resp.Removed), nil
}

func (a *ipcAccess) Health(_ context.Context) (ipc.HistoryHealthResponse, error) {
	resp, err := a.client.HistoryHealth()
	if err != nil {
		return ipc.HistoryHealthResponse{}, err
	}
	return *resp, nil
}

func (a *ipcAccess) DatabaseHealth(_ context.Context) (ipc.DatabaseHealthResponse, error) {
	resp, err := a.client.DatabaseHealth()
	if err != nil {
		return ipc.DatabaseHealthResponse{}, err
	}
	return *resp, nil
}

type storeAccess struct {
	store *history.Store
}

func (a *storeAccess) List(ctx context.Context, limit int, statuses []string) ([]ipc.BatchSummary, error) {
	var filters []batch.Status
	for _, s := range statuses {
		if parsed, ok := batch.ParseStatus(s); ok {
			filters = append(filters, parsed)
		}
	}
	batches, err := a.store.List(ctx, limit, filters...)
	if err != nil {
		return nil, err
	}
	summaries := make([]ipc.BatchSummary, 0, len(batches))
	for _, b := range batches {
		if b == nil {
			continue
		}
		summaries = append(summaries, ipc.FromBatch(b))
	}
	return summaries, nil
}

func (a *storeAccess) Describe(ctx context.Context, id string) (*ipc.BatchSummary, error) {
	b, err := a.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	summary := ipc.FromBatch(b)
	return &summary, nil
}

func (a *storeAccess) ClearSigned(ctx context.Context) (int64, error) {
	return a.store.DeleteSigned(ctx)
}

func (a *storeAccess) ClearAll(ctx context.Context) (int64, error) {
	return a.store.DeleteAll(ctx)
}

func (a *storeAccess) Health(ctx context.Context) (ipc.HistoryHealthResponse, error) {
	summary, err := a.store.Health(ctx)
	if err != nil {
		return ipc.HistoryHealthResponse{}, err
	}
	return ipc.HistoryHealthResponse{
		Total:     summary.Total,
		Uploading: summary.Uploading,
		Completed: summary.Completed,
		Signed:    summary.Signed,
	}, nil
}

func (a *storeAccess) DatabaseHealth(ctx context.Context) (ipc.DatabaseHealthResponse, error) {
	health, err := a.store.CheckHealth(ctx)
	resp := ipc.DatabaseHealthResponse{
		DBPath:           health.DBPath,
		DatabaseExists:   health.DatabaseExists,
		DatabaseReadable: health.DatabaseReadable,
		SchemaVersion:    health.SchemaVersion,
		TableExists:      health.TableExists,
		ColumnsPresent:   health.ColumnsPresent,
		MissingColumns:   health.MissingColumns,
		IntegrityCheck:   health.IntegrityCheck,
		TotalBatches:     health.TotalBatches,
		Error:            health.Error,
	}
	if err != nil && health.Error == "" {
		return resp, err
	}
	return resp, nil
}
