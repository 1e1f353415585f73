package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Client talks to a running Server over its Unix socket. Grounded on the
// teacher's Client (internal/server/client.go), trimmed to Snipe's six
// operations.
type Client struct {
	httpClient *http.Client
	socketPath string
}

// NewClientWithSocket creates a client bound to an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socketPath)
			},
		},
		Timeout: 30 * time.Second,
	}
	return &Client{httpClient: httpClient, socketPath: socketPath}
}

// NewClientForRoot creates a client bound to the default socket derived
// from root, as a server started without an explicit Server.SocketPath
// would be listening on.
func NewClientForRoot(root string) *Client {
	return NewClientWithSocket(SocketPathForRoot(root))
}

func (c *Client) post(path string, req, resp any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	httpResp, err := c.httpClient.Post("http://unix"+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(httpResp.Body)
		return fmt.Errorf("server error: %s", string(b))
	}
	if resp == nil {
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsServerRunning reports whether the socket currently accepts connections.
func (c *Client) IsServerRunning() bool {
	var resp HealthResponse
	return c.post("/health", struct{}{}, &resp) == nil
}

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.post("/health", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Analyze(req AnalyzeRequest) (*AnalyzeResponse, error) {
	var resp AnalyzeResponse
	if err := c.post("/analyze", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Refresh(repoPath string) (*RefreshResponse, error) {
	var resp RefreshResponse
	if err := c.post("/refresh", RefreshRequest{RepoPath: repoPath}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Symbols(req SymbolsRequest) (*SymbolsResponse, error) {
	var resp SymbolsResponse
	if err := c.post("/symbols", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Graph(repoPath string) (*GraphResponse, error) {
	var resp GraphResponse
	if err := c.post("/graph", GraphRequest{RepoPath: repoPath}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SaveDiagnostics(req SaveDiagnosticsRequest) (*SaveDiagnosticsResponse, error) {
	var resp SaveDiagnosticsResponse
	if err := c.post("/save_diagnostics", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
