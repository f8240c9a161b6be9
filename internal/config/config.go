package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all engine configuration.
// Values come from Default(), overridden by environment variables in FromEnv().
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	LLM       LLMConfig       `toml:"llm"`
	Market    MarketConfig    `toml:"market"`
	Intel     IntelConfig     `toml:"intel"`
	Correlate CorrelateConfig `toml:"correlate"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`        // "gemini", "ollama"
	Model          string `toml:"model"`           // e.g. "gemini-1.5-pro"
	GeminiKey      string `toml:"gemini_key"`
	OllamaURL      string `toml:"ollama_url"`
	OllamaModel    string `toml:"ollama_model"`    // e.g. "llama3.2"
	EmbeddingModel string `toml:"embedding_model"` // e.g. "nomic-embed-text"
}

type MarketConfig struct {
	TwelveDataKey string `toml:"twelvedata_key"`
	EcosKey       string `toml:"ecos_key"`
}

// IntelConfig carries the read-only inputs the enrichment and channel
// adapters need: monitored topics and the notification app allow-list.
// These are passed explicitly into Analyze(), never read ambiently.
type IntelConfig struct {
	Keywords      []string `toml:"keywords"`
	AllowedApps   []string `toml:"allowed_apps"`
	MailMaxSync   int      `toml:"mail_max_sync"`
	DeviceScanN   int      `toml:"device_scan_n"`
	RetentionDays int      `toml:"retention_days"`
}

type CorrelateConfig struct {
	Policy    string  `toml:"policy"`    // "tag" or "similarity"
	Threshold float64 `toml:"threshold"` // similarity policy only
	MaxLinks  int     `toml:"max_links"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 38800,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-1.5-pro",
		},
		Intel: IntelConfig{
			AllowedApps: []string{
				"com.kakao.talk",
				"jp.naver.line.android",
				"com.slack",
				"org.telegram.messenger",
				"com.google.android.gm",
				"com.samsung.android.email.provider",
			},
			MailMaxSync:   10,
			DeviceScanN:   50,
			RetentionDays: 30,
		},
		Correlate: CorrelateConfig{
			Policy:    "tag",
			Threshold: 0.65,
			MaxLinks:  3,
		},
	}
}

// FromEnv returns Default() with environment overrides applied.
func FromEnv() Config {
	cfg := Default()
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.LLM.Provider = "gemini"
		cfg.LLM.GeminiKey = key
	}
	if url := os.Getenv("OLLAMA_URL"); url != "" {
		cfg.LLM.Provider = "ollama"
		cfg.LLM.OllamaURL = url
	}
	if key := os.Getenv("TWELVEDATA_API_KEY"); key != "" {
		cfg.Market.TwelveDataKey = key
	}
	if key := os.Getenv("ECOS_API_KEY"); key != "" {
		cfg.Market.EcosKey = key
	}
	if kw := os.Getenv("INTEL_KEYWORDS"); kw != "" {
		cfg.Intel.Keywords = splitList(kw)
	}
	if path := os.Getenv("INTEL_DB_PATH"); path != "" {
		cfg.Database.Path = path
	}
	if policy := os.Getenv("INTEL_CORRELATE_POLICY"); policy != "" {
		cfg.Correlate.Policy = policy
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
