package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jknam3036-svg/smart-news-engine/internal/result"
)

// Ollama calls a local Ollama server's generate API.
type Ollama struct {
	url    string
	model  string
	client *http.Client
}

// NewOllama creates a new Ollama client.
func NewOllama(url, model string) *Ollama {
	return &Ollama{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Complete sends a prompt to the Ollama generate endpoint.
func (o *Ollama) Complete(ctx context.Context, prompt string) (*Response, error) {
	reqBody := map[string]any{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.url+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, result.Errorf(result.NetworkError, "ollama api: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, result.Errorf(result.NetworkError, "read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &result.Error{
			Code:    result.FromStatus(resp.StatusCode),
			Message: fmt.Sprintf("ollama api status %d", resp.StatusCode),
			Details: string(respBody),
		}
	}

	var parsed struct {
		Response  string `json:"response"`
		EvalCount int    `json:"eval_count"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, result.Errorf(result.ParseError, "decode response: %v", err)
	}

	return &Response{
		Content:    parsed.Response,
		Provider:   "ollama",
		TokensUsed: parsed.EvalCount,
	}, nil
}
