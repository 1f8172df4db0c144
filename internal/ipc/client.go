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

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Livecap.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionCreate starts a new session on the daemon.
func (c *Client) SessionCreate(req SessionRequest) (*SessionCreateResponse, error) {
	var resp SessionCreateResponse
	if err := c.client.Call("Livecap.SessionCreate", SessionCreateRequest{Session: req}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionList returns all live and archived sessions.
func (c *Client) SessionList() (*SessionListResponse, error) {
	var resp SessionListResponse
	if err := c.client.Call("Livecap.SessionList", SessionListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionDescribe returns details for a single session.
func (c *Client) SessionDescribe(id string) (*SessionDescribeResponse, error) {
	var resp SessionDescribeResponse
	if err := c.client.Call("Livecap.SessionDescribe", SessionDescribeRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionStop stops a running session.
func (c *Client) SessionStop(id string) (*SessionStopResponse, error) {
	var resp SessionStopResponse
	if err := c.client.Call("Livecap.SessionStop", SessionStopRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionCleanup stops a session and removes its scratch directory.
func (c *Client) SessionCleanup(id string) (*SessionCleanupResponse, error) {
	var resp SessionCleanupResponse
	if err := c.client.Call("Livecap.SessionCleanup", SessionCleanupRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Shutdown asks the daemon process to exit.
func (c *Client) Shutdown() (*ShutdownResponse, error) {
	var resp ShutdownResponse
	if err := c.client.Call("Livecap.Shutdown", ShutdownRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
