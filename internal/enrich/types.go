// Package enrich turns raw channel content into a structured analysis by
// routing to a source-specific strategy and normalizing every strategy's
// output into one AnalysisResult shape. Enrichment is best-effort: any
// failure yields a nil result and ingestion falls back to raw content.
package enrich

import (
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

// AnalysisResult is the common shape all strategies normalize into.
type AnalysisResult struct {
	Summary          string         `json:"summary"`
	StrategicInsight string         `json:"strategic_insight,omitempty"`
	BusinessImpact   *int           `json:"business_impact,omitempty"`
	SentimentScore   *float64       `json:"sentiment_score,omitempty"`
	Priority         store.Priority `json:"priority"`
	Tags             []string       `json:"tags,omitempty"`
	SuggestedAction  string         `json:"suggested_action,omitempty"`
	ActionDraft      string         `json:"action_draft,omitempty"`
	Evidence         string         `json:"evidence,omitempty"`
	PublishedAt      string         `json:"published_at,omitempty"`
}

// EmailCategory is the email strategy's classification label.
type EmailCategory string

const (
	EmailCritical   EmailCategory = "CRITICAL"
	EmailProject    EmailCategory = "PROJECT"
	EmailAdmin      EmailCategory = "ADMIN"
	EmailNewsletter EmailCategory = "NEWSLETTER"
	EmailSpam       EmailCategory = "SPAM"
	EmailUnknown    EmailCategory = "UNKNOWN"
)

// EmailAnalysis is the email strategy's native output before mapping.
type EmailAnalysis struct {
	Category         EmailCategory `json:"category"`
	Summary          string        `json:"summary"`
	IsUrgent         bool          `json:"isUrgent"`
	SuggestedActions []string      `json:"suggestedActions"`
	Evidence         string        `json:"evidence"`
	PublishedAt      string        `json:"publishedAt"`
}

// Request is the content handed to Analyze.
type Request struct {
	SourceKind store.SourceKind
	RawContent string
	Sender     string
	Subject    string // email only; empty otherwise
}

// Context carries the caller-provided configuration inputs. Nothing in
// this package reads ambient settings.
type Context struct {
	Keywords []string
}

// FilteredSummary is the fixed marker stored instead of any extracted
// detail when a short message is personal, spam, or carries sensitive
// tokens.
const FilteredSummary = "Filtered sensitive/spam"

// FilteredResult returns the fixed low-priority result for sensitive or
// spam short messages.
func FilteredResult() *AnalysisResult {
	return &AnalysisResult{
		Summary:  FilteredSummary,
		Priority: store.PriorityLow,
	}
}
