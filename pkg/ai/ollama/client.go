package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to a locally reachable Ollama-style model endpoint.
// It is the secondary feedback provider behind the hosted one.
type Client struct {
	BaseURL     string
	Model       string
	Temperature float64
	httpDo      *http.Client
}

func New(baseURL, model string, temperature float64) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &Client{
		BaseURL:     baseURL,
		Model:       model,
		Temperature: temperature,
		httpDo: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Complete sends the prompt and returns the raw completion text.
// A non-2xx status is a hard failure for the attempt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:   c.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]any{"temperature": c.Temperature},
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := c.BaseURL + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama http %d: %s", resp.StatusCode, resp.Status)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// Ready probes the endpoint root. Callers bound the wait with the
// context deadline and treat a miss as permanent unavailability.
func (c *Client) Ready(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ollama not ready: http %d", resp.StatusCode)
	}
	return nil
}
