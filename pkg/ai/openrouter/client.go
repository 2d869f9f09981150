package openrouter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Client is a minimal OpenRouter (OpenAI-compatible) chat completions
// client used as the primary feedback provider. The document travels
// as an inline file part next to the instruction text.
type Client struct {
	APIKey  string
	BaseURL string
	Model   string
	httpDo  *http.Client
}

func New(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   model,
		httpDo: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type filePart struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type contentPart struct {
	Type string    `json:"type"`
	Text string    `json:"text,omitempty"`
	File *filePart `json:"file,omitempty"`
}

type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type chatCompletionsRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

// AnalyzeDocument sends the resume plus instructions in a single chat
// message. The returned value is the provider-native choice object
// ({"message": {...}}); its exact content shape varies by model, so
// callers extract the text with the response extractor rather than
// assuming a field layout here.
func (c *Client) AnalyzeDocument(ctx context.Context, document []byte, instructions string) (any, error) {
	if c.APIKey == "" {
		return nil, errors.New("openrouter api key is empty")
	}

	fileData := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(document)
	reqBody := chatCompletionsRequest{
		Model: c.Model,
		Messages: []message{{
			Role: "user",
			Content: []contentPart{
				{Type: "file", File: &filePart{Filename: "resume.pdf", FileData: fileData}},
				{Type: "text", Text: instructions},
			},
		}},
		Temperature: 0.2,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/chat/completions", c.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errMap map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errMap)
		return nil, fmt.Errorf("openrouter http %d: %v", resp.StatusCode, errMap)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	choices, ok := out["choices"].([]any)
	if !ok || len(choices) == 0 {
		return nil, errors.New("no choices returned by model")
	}
	return choices[0], nil
}
