package llm

import (
	"context"
	"fmt"

	"github.com/jknam3036-svg/smart-news-engine/internal/config"
)

// Client is the interface for enrichment providers: prompt in, text out.
// Provider failures are classified into the shared result taxonomy so the
// orchestrator can log them uniformly.
type Client interface {
	Complete(ctx context.Context, prompt string) (*Response, error)
}

// Response holds the result of a completion.
type Response struct {
	Content    string
	Provider   string
	TokensUsed int
}

// NewClient creates an enrichment client based on the config provider setting.
func NewClient(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("gemini provider requires GEMINI_API_KEY or config")
		}
		model := cfg.Model
		if model == "" {
			model = "gemini-1.5-pro"
		}
		return NewGemini(cfg.GeminiKey, model), nil
	case "ollama":
		url := cfg.OllamaURL
		if url == "" {
			url = "http://localhost:11434"
		}
		model := cfg.OllamaModel
		if model == "" {
			model = "llama3.2"
		}
		return NewOllama(url, model), nil
	default:
		return nil, fmt.Errorf("unknown enrichment provider: %q", cfg.Provider)
	}
}
