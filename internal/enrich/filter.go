package enrich

import (
	"regexp"
	"strings"
)

// codeMarkers are phrases that indicate a message carries a one-time code
// or similar secret. Matching is lowercase-contains since several markers
// are not word-boundary friendly.
var codeMarkers = []string{
	"otp",
	"one-time",
	"one time code",
	"verification",
	"verify code",
	"auth code",
	"authentication code",
	"security code",
	"인증",
	"인증번호",
}

var (
	// digitToken matches bare 4-8 digit runs, the usual OTP shape.
	digitToken = regexp.MustCompile(`\b\d{4,8}\b`)
	// accountToken matches dash-separated account-number shapes.
	accountToken = regexp.MustCompile(`\b\d{2,6}-\d{2,6}-\d{2,6}\b`)
)

// sensitiveTokens returns the secret-looking tokens in a message: digit
// runs when a code marker is present, account-number shapes always.
func sensitiveTokens(content string) []string {
	var tokens []string
	lower := strings.ToLower(content)

	marked := false
	for _, m := range codeMarkers {
		if strings.Contains(lower, m) {
			marked = true
			break
		}
	}
	if marked {
		tokens = append(tokens, digitToken.FindAllString(content, -1)...)
	}
	tokens = append(tokens, accountToken.FindAllString(content, -1)...)
	return tokens
}

// ContainsSensitive reports whether a short message carries tokens that
// must never reach an analysis result. Channel adapters use it to
// pre-filter verification-code messages before enrichment.
func ContainsSensitive(content string) bool {
	return len(sensitiveTokens(content)) > 0
}

// leaksSensitive reports whether any analysis output field echoes a
// sensitive token from the original content. Belt-and-braces on top of
// the prompt-level refusal: model output is not trusted to comply.
func leaksSensitive(content string, res *AnalysisResult) bool {
	tokens := sensitiveTokens(content)
	if len(tokens) == 0 {
		return false
	}
	fields := []string{
		res.Summary, res.StrategicInsight, res.Evidence,
		res.SuggestedAction, res.ActionDraft,
	}
	for _, tok := range tokens {
		for _, f := range fields {
			if f != "" && strings.Contains(f, tok) {
				return true
			}
		}
	}
	return false
}
