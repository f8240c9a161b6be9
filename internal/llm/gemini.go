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

const geminiAPI = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini calls the Google Generative Language API directly.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGemini creates a new Gemini API client.
func NewGemini(apiKey, model string) *Gemini {
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiAPI,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Complete sends a prompt to the Gemini API.
func (g *Gemini) Complete(ctx context.Context, prompt string) (*Response, error) {
	reqBody := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":     0.3,
			"maxOutputTokens": 2048,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, result.Errorf(result.NetworkError, "gemini api: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, result.Errorf(result.NetworkError, "read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &result.Error{
			Code:    result.FromStatus(resp.StatusCode),
			Message: fmt.Sprintf("gemini api status %d", resp.StatusCode),
			Details: string(respBody),
		}
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		UsageMetadata struct {
			TotalTokenCount int `json:"totalTokenCount"`
		} `json:"usageMetadata"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, result.Errorf(result.ParseError, "decode response: %v", err)
	}

	text := ""
	if len(parsed.Candidates) > 0 && len(parsed.Candidates[0].Content.Parts) > 0 {
		text = parsed.Candidates[0].Content.Parts[0].Text
	}

	return &Response{
		Content:    text,
		Provider:   "gemini",
		TokensUsed: parsed.UsageMetadata.TotalTokenCount,
	}, nil
}
