// Package syncstore mirrors the submission store state to a remote JSON bin.
package syncstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/setorid/collector/internal/app/domain/submission"
)

const (
	defaultBaseURL     = "https://api.jsonbin.io/v3"
	defaultTimeout     = 15 * time.Second
	defaultMaxBodySize = 1 << 20 // 1MiB
)

// Config configures the bin client.
type Config struct {
	// BaseURL is the base URL of the bin service. Defaults to the JSONBin v3
	// API.
	BaseURL string
	// BinID identifies the blob holding the mirrored state.
	BinID string
	// MasterKey is sent as X-Master-Key when non-empty.
	MasterKey string
	// HTTPClient is used to execute requests. When nil, a default client with
	// a conservative timeout is used.
	HTTPClient *http.Client
	// MaxBodyBytes caps response bodies to prevent memory exhaustion.
	MaxBodyBytes int64
}

// Client reads and overwrite-pushes the full store state on a remote bin.
type Client struct {
	baseURL      string
	binID        string
	masterKey    string
	httpClient   *http.Client
	maxBodyBytes int64
}

// New creates a bin client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("syncstore: BaseURL must be a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("syncstore: BaseURL scheme must be http or https")
	}
	if parsed.User != nil {
		return nil, fmt.Errorf("syncstore: BaseURL must not include user info")
	}

	binID := strings.TrimSpace(cfg.BinID)
	if binID == "" {
		return nil, fmt.Errorf("syncstore: BinID is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if client.Timeout == 0 {
		client.Timeout = defaultTimeout
	}

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodySize
	}

	return &Client{
		baseURL:      baseURL,
		binID:        binID,
		masterKey:    strings.TrimSpace(cfg.MasterKey),
		httpClient:   client,
		maxBodyBytes: maxBodyBytes,
	}, nil
}

// Fetch downloads the last pushed store state.
func (c *Client) Fetch(ctx context.Context) (submission.State, error) {
	endpoint := c.baseURL + "/b/" + url.PathEscape(c.binID) + "/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return submission.State{}, fmt.Errorf("syncstore: create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return submission.State{}, fmt.Errorf("syncstore: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return submission.State{}, c.statusError(resp)
	}

	var out struct {
		Record submission.State `json:"record"`
	}
	dec := json.NewDecoder(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err := dec.Decode(&out); err != nil {
		return submission.State{}, fmt.Errorf("syncstore: decode response: %w", err)
	}
	return out.Record, nil
}

// Push overwrites the remote blob with the given state.
func (c *Client) Push(ctx context.Context, state submission.State) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("syncstore: encode state: %w", err)
	}

	endpoint := c.baseURL + "/b/" + url.PathEscape(c.binID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("syncstore: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("syncstore: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBodyBytes))
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.masterKey != "" {
		req.Header.Set("X-Master-Key", c.masterKey)
	}
}

func (c *Client) statusError(resp *http.Response) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := ""
	if readErr == nil {
		msg = strings.TrimSpace(string(body))
	}
	if msg != "" {
		return fmt.Errorf("syncstore: %s: %s", resp.Status, msg)
	}
	return fmt.Errorf("syncstore: %s", resp.Status)
}
