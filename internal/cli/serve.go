package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jknam3036-svg/smart-news-engine/internal/channel"
	"github.com/jknam3036-svg/smart-news-engine/internal/config"
	"github.com/jknam3036-svg/smart-news-engine/internal/correlate"
	"github.com/jknam3036-svg/smart-news-engine/internal/enrich"
	"github.com/jknam3036-svg/smart-news-engine/internal/ingest"
	"github.com/jknam3036-svg/smart-news-engine/internal/llm"
	"github.com/jknam3036-svg/smart-news-engine/internal/market"
	"github.com/jknam3036-svg/smart-news-engine/internal/retention"
	"github.com/jknam3036-svg/smart-news-engine/internal/server"
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()

	// Resolve database path
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Enrichment is optional: without a provider the pipeline stores raw
	// content fallbacks.
	var analyzer *enrich.Analyzer
	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: LLM not configured (%v), enrichment disabled\n", err)
	} else {
		analyzer = enrich.New(llmClient)
		fmt.Fprintf(os.Stderr, "  llm: %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
	}

	correlator := buildCorrelator(db, cfg)
	pipeline := ingest.New(db, analyzer, correlator, cfg.Intel.Keywords)

	deps := server.Deps{
		Pipeline:  pipeline,
		Notify:    channel.NewNotificationCapture(pipeline, cfg.Intel.AllowedApps),
		Retention: retention.New(db, cfg.Intel.RetentionDays),
	}
	if cfg.Market.TwelveDataKey != "" {
		deps.Market = market.NewTwelveData(cfg.Market.TwelveDataKey)
		fmt.Fprintf(os.Stderr, "  market: twelvedata\n")
	}
	if cfg.Market.EcosKey != "" {
		deps.Ecos = market.NewEcos(cfg.Market.EcosKey)
		fmt.Fprintf(os.Stderr, "  market: ecos\n")
	}

	srv := server.New(db, deps, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	drainCtx, stopDrain := context.WithCancel(context.Background())
	go deps.Notify.Run(drainCtx)

	go func() {
		fmt.Fprintf(os.Stderr, "smartnews serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")
	stopDrain()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}

// buildCorrelator picks the configured policy. The similarity policy
// prefers an Ollama embedder and falls back to TF-IDF over the stored
// corpus when none is reachable.
func buildCorrelator(db *store.DB, cfg config.Config) correlate.Correlator {
	if cfg.Correlate.Policy != "similarity" {
		tc := correlate.NewTagCorrelator(db)
		if cfg.Correlate.MaxLinks > 0 {
			tc.MaxLinks = cfg.Correlate.MaxLinks
		}
		return tc
	}

	ollamaURL := cfg.LLM.OllamaURL
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}
	embeddingModel := cfg.LLM.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = "nomic-embed-text"
	}

	var embedder correlate.Embedder
	if correlate.ProbeOllama(ollamaURL, embeddingModel) {
		embedder = correlate.NewOllamaEmbedder(ollamaURL, embeddingModel, 768)
		fmt.Fprintf(os.Stderr, "  embedder: ollama (%s)\n", embeddingModel)
	} else {
		emb, err := correlate.NewTFIDFEmbedder(db, 512)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: tfidf embedder init failed (%v), using tag policy\n", err)
			return correlate.NewTagCorrelator(db)
		}
		embedder = emb
		fmt.Fprintf(os.Stderr, "  embedder: tfidf (fallback)\n")
	}

	sc := correlate.NewSimilarityCorrelator(db, embedder, cfg.Correlate.Threshold)
	if cfg.Correlate.MaxLinks > 0 {
		sc.MaxLinks = cfg.Correlate.MaxLinks
	}
	return sc
}
