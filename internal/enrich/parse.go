package enrich

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

// stripFences removes markdown code fences and any wrapper text around
// the first JSON object in a model response.
func stripFences(content string) (string, error) {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		// Remove first and last lines (```json and ```)
		if len(lines) > 2 {
			content = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < 0 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return content[start : end+1], nil
}

// rawAnalysis tolerates the loose numeric and casing conventions models
// produce before validation tightens them.
type rawAnalysis struct {
	Summary          string   `json:"summary"`
	StrategicInsight string   `json:"strategicInsight"`
	BusinessImpact   *float64 `json:"businessImpact"`
	SentimentScore   *float64 `json:"sentimentScore"`
	Priority         string   `json:"priority"`
	Tags             []string `json:"tags"`
	SuggestedAction  string   `json:"suggestedAction"`
	ActionDraft      string   `json:"actionDraft"`
	Evidence         string   `json:"evidence"`
	PublishedAt      string   `json:"publishedAt"`
}

// parseGeneralResult extracts and validates the common analysis shape.
// A missing summary or undecodable payload is a validation failure.
func parseGeneralResult(content string) (*AnalysisResult, error) {
	jsonStr, err := stripFences(content)
	if err != nil {
		return nil, err
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}
	if strings.TrimSpace(raw.Summary) == "" {
		return nil, fmt.Errorf("analysis missing summary")
	}

	out := &AnalysisResult{
		Summary:          strings.TrimSpace(raw.Summary),
		StrategicInsight: raw.StrategicInsight,
		Priority:         normalizePriority(raw.Priority),
		SuggestedAction:  raw.SuggestedAction,
		ActionDraft:      raw.ActionDraft,
		Evidence:         raw.Evidence,
		PublishedAt:      raw.PublishedAt,
	}

	if raw.BusinessImpact != nil {
		v := clampInt(int(*raw.BusinessImpact), 1, 10)
		out.BusinessImpact = &v
	}
	if raw.SentimentScore != nil {
		v := clampFloat(*raw.SentimentScore, -1.0, 1.0)
		out.SentimentScore = &v
	}

	// Up to 3 topical labels, blanks dropped
	for _, t := range raw.Tags {
		t = strings.TrimSpace(strings.TrimPrefix(t, "#"))
		if t == "" {
			continue
		}
		out.Tags = append(out.Tags, t)
		if len(out.Tags) == 3 {
			break
		}
	}

	return out, nil
}

// parseEmailResult extracts the email strategy's native shape.
func parseEmailResult(content string) (*EmailAnalysis, error) {
	jsonStr, err := stripFences(content)
	if err != nil {
		return nil, err
	}

	var out EmailAnalysis
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		return nil, fmt.Errorf("unmarshal email analysis: %w", err)
	}
	out.Category = EmailCategory(strings.ToUpper(strings.TrimSpace(string(out.Category))))
	switch out.Category {
	case EmailCritical, EmailProject, EmailAdmin, EmailNewsletter, EmailSpam:
	default:
		out.Category = EmailUnknown
	}
	return &out, nil
}

func normalizePriority(p string) store.Priority {
	switch store.Priority(strings.ToUpper(strings.TrimSpace(p))) {
	case store.PriorityLow:
		return store.PriorityLow
	case store.PriorityHigh:
		return store.PriorityHigh
	case store.PriorityCritical:
		return store.PriorityCritical
	default:
		return store.PriorityNormal
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
