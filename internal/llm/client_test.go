package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jknam3036-svg/smart-news-engine/internal/config"
	"github.com/jknam3036-svg/smart-news-engine/internal/result"
)

func TestNewClient(t *testing.T) {
	// Gemini requires a key
	_, err := NewClient(config.LLMConfig{Provider: "gemini"})
	if err == nil {
		t.Error("expected error for gemini without key")
	}

	c, err := NewClient(config.LLMConfig{Provider: "gemini", GeminiKey: "k"})
	if err != nil {
		t.Fatalf("gemini with key: %v", err)
	}
	if _, ok := c.(*Gemini); !ok {
		t.Errorf("client = %T, want *Gemini", c)
	}

	// Ollama needs no key, defaults apply
	c, err = NewClient(config.LLMConfig{Provider: "ollama"})
	if err != nil {
		t.Fatalf("ollama: %v", err)
	}
	if _, ok := c.(*Ollama); !ok {
		t.Errorf("client = %T, want *Ollama", c)
	}

	// Unknown provider
	if _, err := NewClient(config.LLMConfig{Provider: "psychic"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestGeminiComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-1.5-pro:generateContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "{\"summary\": \"ok\"}"}]}}],
			"usageMetadata": {"totalTokenCount": 21}
		}`))
	}))
	defer srv.Close()

	g := NewGemini("test-key", "gemini-1.5-pro")
	g.baseURL = srv.URL

	resp, err := g.Complete(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != `{"summary": "ok"}` {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.TokensUsed != 21 {
		t.Errorf("tokens = %d, want 21", resp.TokensUsed)
	}
}

func TestGeminiStatusClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
		w.Write([]byte(`{"error": "quota"}`))
	}))
	defer srv.Close()

	g := NewGemini("test-key", "gemini-1.5-pro")
	g.baseURL = srv.URL

	_, err := g.Complete(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	rerr, ok := err.(*result.Error)
	if !ok {
		t.Fatalf("err = %T, want *result.Error", err)
	}
	if rerr.Code != result.RateLimitExceeded {
		t.Errorf("code = %q, want RATE_LIMIT_EXCEEDED", rerr.Code)
	}
}

func TestOllamaComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"response": "hello there", "eval_count": 7}`))
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "llama3.2")
	resp, err := o.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "hello there" {
		t.Errorf("content = %q", resp.Content)
	}
}

func TestPromptsCarryConstraints(t *testing.T) {
	news := NewsAnalysisPrompt("Title", "Body", []string{"rates", "semis"})
	if !strings.Contains(news, "rates, semis") {
		t.Error("news prompt missing keywords")
	}
	if !strings.Contains(news, "Do not hallucinate") {
		t.Error("news prompt missing grounding constraint")
	}

	msg := MessageAnalysisPrompt("010-1234", "text")
	if !strings.Contains(msg, "IGNORE any private financial codes") {
		t.Error("message prompt missing privacy constraint")
	}

	email := EmailAnalysisPrompt("Subject", "Body")
	if !strings.Contains(email, "CRITICAL, PROJECT, ADMIN, NEWSLETTER, SPAM") {
		t.Error("email prompt missing category set")
	}
}
