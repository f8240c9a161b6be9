package llm

import (
	"fmt"
	"strings"
)

// NewsAnalysisPrompt builds the prompt for news/economy content. The
// grounding constraint matters: evidence must come from the input text,
// never from the model's outside knowledge.
func NewsAnalysisPrompt(title, content string, keywords []string) string {
	return fmt.Sprintf(`You are a business intelligence assistant.
The user is interested in these topics: [%s].

Analyze this NEWS article and provide a deep business reasoning:
Title: %s
Content: %s

Constraint:
1. Adhere strictly to the original text. Do not hallucinate external facts.
2. Extract specific EVIDENCE (numbers, quotes, or key facts) that support the insight.
3. Try to identify the PUBLICATION DATE/TIME from the content.

Return JSON with:
- summary: 1 sentence core insight.
- strategicInsight: 2-3 sentences on HOW this specifically affects the user's topics or business strategy.
- evidence: The specific factual basis or numbers from the original text.
- publishedAt: Original time string if found (e.g., "2024-12-30 14:00"), else null.
- businessImpact: Integer 1 to 10 scale.
- sentimentScore: Double -1.0 (Neg) to 1.0 (Pos).
- priority: CRITICAL, HIGH, NORMAL, LOW.
- tags: up to 3 key hashtags.
- suggestedAction: "Draft Reply", "Add Task", "Schedule", or null.
- actionDraft: If action is suggested, a brief draft of a professional response or task description.
Return ONLY JSON.`, strings.Join(keywords, ", "), title, content)
}

// MessageAnalysisPrompt builds the prompt for SMS/messenger content. The
// privacy constraint is part of the contract: one-time codes and account
// numbers must never be echoed back.
func MessageAnalysisPrompt(sender, content string) string {
	return fmt.Sprintf(`Analyze this SHORT MESSAGE (SMS/IM) for business value:
Sender: %s
Content: %s

Constraint: Strictly IGNORE any private financial codes, OTPs, or bank account numbers.
If it's purely personal/sensitive/spam, set priority LOW and summary "Filtered sensitive/spam".

Return JSON with:
- summary: Professional summary of the context.
- strategicInsight: Why this matters (e.g. "Vendor update", "Customer inquiry").
- businessImpact: Integer 1-10.
- sentimentScore: Double -1.0 to 1.0.
- priority: CRITICAL, HIGH, NORMAL, LOW.
- tags: e.g. "Client", "Internal", "Delivery".
- suggestedAction: e.g. "Confirm Receipt", "Call Back", null.
- actionDraft: A polite reply draft if applicable.
Return ONLY JSON.`, sender, content)
}

// EmailAnalysisPrompt builds the prompt for email content.
func EmailAnalysisPrompt(subject, body string) string {
	return fmt.Sprintf(`Analyze the following email and classify it.
Subject: %s
Body: %s

Return JSON with:
- category: CRITICAL, PROJECT, ADMIN, NEWSLETTER, SPAM, or UNKNOWN.
- summary: 1-2 sentence summary of what the email asks or informs.
- isUrgent: true if a same-day response is expected, else false.
- suggestedActions: up to 3 short action labels (e.g. "Reply", "Schedule meeting").
- evidence: the phrase or sentence that justifies the category.
- publishedAt: sent time string if present in the content, else null.
Return ONLY JSON.`, subject, body)
}
