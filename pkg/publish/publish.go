package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openjurist/lawgraph/pkg/graph"
)

// Edit is one bounded set of operations submitted atomically to the
// external graph system.
type Edit struct {
	SpaceID string     `json:"spaceId"`
	Author  string     `json:"author"`
	Name    string     `json:"name"`
	Ops     []graph.Op `json:"ops"`
}

// Publisher submits edits to the external graph system. The call is
// at-least-once with synchronous success/failure signaling; retry
// semantics belong to the caller.
type Publisher interface {
	Publish(ctx context.Context, edit Edit) (string, error)
}

// APIClient publishes edits through the graph protocol's HTTP API and
// returns the transaction handle the space reports.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a publisher against the given API base URL.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

type publishResponse struct {
	TxHash string `json:"txHash"`
	Error  string `json:"error"`
}

// Publish posts the edit to the space's edit endpoint. The edit is
// committed atomically on the remote side; a non-2xx status or transport
// error means the edit must be treated as not published.
func (c *APIClient) Publish(ctx context.Context, edit Edit) (string, error) {
	body, err := json.Marshal(edit)
	if err != nil {
		return "", fmt.Errorf("failed to encode edit: %w", err)
	}

	url := fmt.Sprintf("%s/space/%s/edit", c.baseURL, edit.SpaceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to publish edit: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read publish response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("publish rejected with status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed publishResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode publish response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("publish failed: %s", parsed.Error)
	}

	return parsed.TxHash, nil
}
