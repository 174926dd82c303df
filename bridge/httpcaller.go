package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// HTTPToolCaller reaches the external render service over HTTP. The service
// exposes one endpoint accepting {tool, arguments} and answering
// {ok, content}; everything behind it is a black box.
type HTTPToolCaller struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewHTTPToolCaller creates a caller for the given service URL. An empty URL
// falls back to the RENDER_SERVICE_URL environment variable.
func NewHTTPToolCaller(baseURL string) *HTTPToolCaller {
	if baseURL == "" {
		baseURL = os.Getenv("RENDER_SERVICE_URL")
	}
	return &HTTPToolCaller{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type toolCallRequest struct {
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments"`
}

// CallTool posts the invocation to the render service and returns its
// response verbatim.
func (c *HTTPToolCaller) CallTool(ctx context.Context, name string, arguments map[string]interface{}) (ToolResponse, error) {
	if c.BaseURL == "" {
		return ToolResponse{}, fmt.Errorf("render service URL is not configured")
	}

	body, err := json.Marshal(toolCallRequest{Tool: name, Arguments: arguments})
	if err != nil {
		return ToolResponse{}, fmt.Errorf("failed to marshal tool call request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/tools/call", bytes.NewReader(body))
	if err != nil {
		return ToolResponse{}, fmt.Errorf("failed to create tool call request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return ToolResponse{}, fmt.Errorf("tool call transport error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ToolResponse{}, fmt.Errorf("failed to read tool call response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return ToolResponse{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var toolResp ToolResponse
	if err := json.Unmarshal(respBody, &toolResp); err != nil {
		return ToolResponse{}, fmt.Errorf("failed to unmarshal tool call response: %w", err)
	}

	return toolResp, nil
}
