package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// Client wraps the Google GenAI SDK as an alternative primary
// feedback provider. Replies are flattened to plain text.
type Client struct {
	client    *genai.Client
	modelName string
}

func New(ctx context.Context, apiKey, model string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Client{client: client, modelName: model}, nil
}

// AnalyzeDocument sends the resume PDF inline together with the
// instruction text and returns the first textual response.
func (c *Client) AnalyzeDocument(ctx context.Context, document []byte, instructions string) (any, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("gemini client is not initialized")
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "application/pdf", Data: document}},
			{Text: instructions},
		},
	}}

	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return nil, errors.New("gemini api returned empty response")
	}
	return output, nil
}
