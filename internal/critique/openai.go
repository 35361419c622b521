package critique

import (
	"context"
	"encoding/json"
	"net/http"
)

// openAIBackend calls the OpenAI chat completions API in JSON mode.
type openAIBackend struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	http      *http.Client
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (b *openAIBackend) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := openAIRequest{
		Model: b.model,
		Messages: []openAIMessage{
			{Role: "system", Content: jsonOnlyInstruction},
			{Role: "user", Content: prompt},
		},
		MaxTokens: b.maxTokens,
	}
	reqBody.ResponseFormat.Type = "json_object"
	headers := map[string]string{
		"Authorization": "Bearer " + b.apiKey,
	}

	respBody, err := postJSON(ctx, b.http, "openai", b.baseURL+"/chat/completions", headers, reqBody)
	if err != nil {
		return "", err
	}

	var apiResp openAIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", malformed("openai", "decode response", err)
	}
	if apiResp.Error != nil {
		return "", malformed("openai", apiResp.Error.Type+": "+apiResp.Error.Message, nil)
	}
	if len(apiResp.Choices) == 0 || apiResp.Choices[0].Message.Content == "" {
		return "", malformed("openai", "empty response", nil)
	}
	return apiResp.Choices[0].Message.Content, nil
}
