// Package client calls the hrify backend over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/valpere/hrify/internal"
)

// DefaultEndpoint is the backend route used when none is configured.
const DefaultEndpoint = "http://localhost:5000/process"

// ErrTransport marks failures to reach the backend or to read its reply.
var ErrTransport = errors.New("transport error")

// Client posts scenario requests to the backend. It sets no timeout of its
// own; the call runs until the transport or the caller's context ends it.
type Client struct {
	endpoint string
	client   *http.Client
}

func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

// NewWithHTTPClient is New with a caller-supplied http.Client.
func NewWithHTTPClient(endpoint string, hc *http.Client) *Client {
	c := New(endpoint)
	if hc != nil {
		c.client = hc
	}
	return c
}

func (c *Client) Endpoint() string { return c.endpoint }

// Process sends req and decodes the JSON reply whatever the HTTP status: the
// backend reports its own failures in the error field. A network failure or a
// body that is not JSON is returned wrapped in ErrTransport.
func (c *Client) Process(ctx context.Context, req internal.ScenarioRequest) (internal.ScenarioResponse, error) {
	var out internal.ScenarioResponse

	jsonData, err := json.Marshal(req)
	if err != nil {
		return out, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return out, fmt.Errorf("%w: failed to create request: %v", ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return out, fmt.Errorf("%w: request failed: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("%w: failed to read response: %v", ErrTransport, err)
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return internal.ScenarioResponse{}, fmt.Errorf("%w: status %d, invalid JSON: %v", ErrTransport, resp.StatusCode, err)
	}

	return out, nil
}
