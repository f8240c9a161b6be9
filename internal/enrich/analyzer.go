package enrich

import (
	"context"
	"log"
	"time"

	"github.com/jknam3036-svg/smart-news-engine/internal/llm"
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

// defaultTimeout bounds a single enrichment call. A provider that does
// not answer within this window surfaces as a failed enrichment, never
// as a hang in the ingestion pipeline.
const defaultTimeout = 60 * time.Second

// Analyzer routes content to the right analysis strategy by source kind.
type Analyzer struct {
	Client  llm.Client
	Timeout time.Duration
}

// New creates an Analyzer. A nil client disables enrichment: every
// Analyze call returns nil and ingestion stores raw content.
func New(client llm.Client) *Analyzer {
	return &Analyzer{Client: client, Timeout: defaultTimeout}
}

// Analyze returns the structured analysis for the request, or nil when
// enrichment fails or does not apply. A nil return is not an error:
// callers fall back to storing raw content at NORMAL priority.
func (a *Analyzer) Analyze(ctx context.Context, req Request, opts Context) *AnalysisResult {
	if a == nil || a.Client == nil {
		return nil
	}

	switch req.SourceKind {
	case store.SourceNews, store.SourceEconomy:
		return a.analyzeNews(ctx, req, opts)
	case store.SourceSMS, store.SourceMessenger:
		return a.analyzeMessage(ctx, req)
	case store.SourceEmail:
		return a.analyzeEmail(ctx, req)
	default:
		return nil
	}
}

func (a *Analyzer) analyzeNews(ctx context.Context, req Request, opts Context) *AnalysisResult {
	prompt := llm.NewsAnalysisPrompt("Source: "+string(req.SourceKind), req.RawContent, opts.Keywords)

	content, ok := a.complete(ctx, prompt)
	if !ok {
		return nil
	}
	res, err := parseGeneralResult(content)
	if err != nil {
		log.Printf("enrich: news analysis rejected: %v", err)
		return nil
	}
	return res
}

func (a *Analyzer) analyzeMessage(ctx context.Context, req Request) *AnalysisResult {
	// Sensitive content never reaches the provider at all.
	if ContainsSensitive(req.RawContent) {
		return FilteredResult()
	}

	prompt := llm.MessageAnalysisPrompt(req.Sender, req.RawContent)
	content, ok := a.complete(ctx, prompt)
	if !ok {
		return nil
	}
	res, err := parseGeneralResult(content)
	if err != nil {
		log.Printf("enrich: message analysis rejected: %v", err)
		return nil
	}
	if leaksSensitive(req.RawContent, res) {
		log.Printf("enrich: message analysis leaked a sensitive token, replacing with filtered result")
		return FilteredResult()
	}
	return res
}

func (a *Analyzer) analyzeEmail(ctx context.Context, req Request) *AnalysisResult {
	subject := req.Subject
	if subject == "" {
		subject = "(No Subject)"
	}
	prompt := llm.EmailAnalysisPrompt(subject, req.RawContent)

	content, ok := a.complete(ctx, prompt)
	if !ok {
		return nil
	}
	email, err := parseEmailResult(content)
	if err != nil {
		log.Printf("enrich: email analysis rejected: %v", err)
		return nil
	}
	return mapEmailResult(email)
}

// mapEmailResult is the mapping table from the email strategy's native
// shape to the common result: urgency drives priority, the category
// becomes the tag, CRITICAL category forces CRITICAL priority and
// PROJECT forces at least HIGH.
func mapEmailResult(email *EmailAnalysis) *AnalysisResult {
	priority := store.PriorityNormal
	if email.IsUrgent {
		priority = store.PriorityCritical
	}
	switch email.Category {
	case EmailCritical:
		priority = store.PriorityCritical
	case EmailProject:
		if priority != store.PriorityCritical {
			priority = store.PriorityHigh
		}
	}

	suggested := ""
	if len(email.SuggestedActions) > 0 {
		suggested = email.SuggestedActions[0]
	}

	return &AnalysisResult{
		Summary:         email.Summary,
		Priority:        priority,
		Tags:            []string{string(email.Category)},
		SuggestedAction: suggested,
		Evidence:        email.Evidence,
		PublishedAt:     email.PublishedAt,
	}
}

// complete runs one bounded provider call. All failures are logged and
// collapse to "no analysis".
func (a *Analyzer) complete(ctx context.Context, prompt string) (string, bool) {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := a.Client.Complete(cctx, prompt)
	if err != nil {
		log.Printf("enrich: provider call failed: %v", err)
		return "", false
	}
	if resp == nil || len(resp.Content) < 2 {
		log.Printf("enrich: provider returned empty response")
		return "", false
	}
	return resp.Content, true
}
