package critique

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// googleBackend calls the Gemini generateContent API.
type googleBackend struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	http      *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		ResponseMimeType string `json:"responseMimeType"`
		MaxOutputTokens  int    `json:"maxOutputTokens,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func (b *googleBackend) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: jsonOnlyInstruction}}},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	reqBody.GenerationConfig.ResponseMimeType = "application/json"
	reqBody.GenerationConfig.MaxOutputTokens = b.maxTokens
	headers := map[string]string{
		"x-goog-api-key": b.apiKey,
	}

	endpoint := b.baseURL + "/models/" + url.PathEscape(b.model) + ":generateContent"
	respBody, err := postJSON(ctx, b.http, "google", endpoint, headers, reqBody)
	if err != nil {
		return "", err
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", malformed("google", "decode response", err)
	}
	if apiResp.Error != nil {
		return "", malformed("google", apiResp.Error.Status+": "+apiResp.Error.Message, nil)
	}
	if len(apiResp.Candidates) == 0 {
		return "", malformed("google", "empty response", nil)
	}

	var sb strings.Builder
	for _, p := range apiResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", malformed("google", "empty response", nil)
	}
	return sb.String(), nil
}
