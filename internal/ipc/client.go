package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start asks the daemon to begin watching the upload folder.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Hopper.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the daemon to stop watching.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Hopper.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Hopper.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BatchList returns live batches optionally filtered by statuses.
func (c *Client) BatchList(statuses []string) (*BatchListResponse, error) {
	var resp BatchListResponse
	req := BatchListRequest{Statuses: statuses}
	if err := c.client.Call("Hopper.BatchList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BatchDescribe returns details for a single batch.
func (c *Client) BatchDescribe(id string) (*BatchDescribeResponse, error) {
	var resp BatchDescribeResponse
	req := BatchDescribeRequest{ID: id}
	if err := c.client.Call("Hopper.BatchDescribe", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Sign marks a completed batch as signed.
func (c *Client) Sign(id string) (*SignResponse, error) {
	var resp SignResponse
	req := SignRequest{ID: id}
	if err := c.client.Call("Hopper.Sign", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignAll marks every completed batch as signed.
func (c *Client) SignAll() (*SignAllResponse, error) {
	var resp SignAllResponse
	if err := c.client.Call("Hopper.SignAll", SignAllRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearSigned removes signed batches.
func (c *Client) ClearSigned() (*ClearSignedResponse, error) {
	var resp ClearSignedResponse
	if err := c.client.Call("Hopper.ClearSigned", ClearSignedRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearAll removes every batch regardless of status.
func (c *Client) ClearAll() (*ClearAllResponse, error) {
	var resp ClearAllResponse
	if err := c.client.Call("Hopper.ClearAll", ClearAllRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryList returns persisted batches from the history store.
func (c *Client) HistoryList(req HistoryListRequest) (*HistoryListResponse, error) {
	var resp HistoryListResponse
	if err := c.client.Call("Hopper.HistoryList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryHealth returns aggregate history counts.
func (c *Client) HistoryHealth() (*HistoryHealthResponse, error) {
	var resp HistoryHealthResponse
	if err := c.client.Call("Hopper.HistoryHealth", HistoryHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.client.Call("Hopper.DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Hopper.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Hopper.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
