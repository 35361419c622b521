package critique

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// anthropicBackend calls the Anthropic Messages API.
type anthropicBackend struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	http      *http.Client
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (b *anthropicBackend) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:     b.model,
		MaxTokens: b.maxTokens,
		System:    jsonOnlyInstruction,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}
	headers := map[string]string{
		"x-api-key":         b.apiKey,
		"anthropic-version": "2023-06-01",
	}

	respBody, err := postJSON(ctx, b.http, "anthropic", b.baseURL+"/v1/messages", headers, reqBody)
	if err != nil {
		return "", err
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", malformed("anthropic", "decode response", err)
	}
	if apiResp.Error != nil {
		return "", malformed("anthropic", apiResp.Error.Type+": "+apiResp.Error.Message, nil)
	}

	var sb strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", malformed("anthropic", "empty response", nil)
	}
	return sb.String(), nil
}
