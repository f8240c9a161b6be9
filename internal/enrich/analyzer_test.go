package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jknam3036-svg/smart-news-engine/internal/llm"
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

func TestAnalyzeNilClient(t *testing.T) {
	a := New(nil)
	res := a.Analyze(context.Background(), Request{
		SourceKind: store.SourceNews,
		RawContent: "anything",
	}, Context{})
	assert.Nil(t, res)
}

func TestAnalyzeNews(t *testing.T) {
	mock := &llm.MockClient{Response: &llm.Response{
		Content: `{"summary": "Fab delay", "priority": "HIGH", "tags": ["semis"]}`,
	}}
	a := New(mock)

	res := a.Analyze(context.Background(), Request{
		SourceKind: store.SourceNews,
		RawContent: "Chipmaker delays new fab",
	}, Context{Keywords: []string{"semiconductor"}})

	require.NotNil(t, res)
	assert.Equal(t, "Fab delay", res.Summary)
	assert.Equal(t, store.PriorityHigh, res.Priority)
	// The monitored keywords travel into the prompt, never ambiently.
	require.Len(t, mock.Calls, 1)
	assert.Contains(t, mock.Calls[0], "semiconductor")
}

func TestAnalyzeMalformedOutputFallsBack(t *testing.T) {
	mock := &llm.MockClient{Response: &llm.Response{Content: "I cannot help with that."}}
	a := New(mock)

	res := a.Analyze(context.Background(), Request{
		SourceKind: store.SourceNews,
		RawContent: "some article",
	}, Context{})
	assert.Nil(t, res)
}

func TestAnalyzeMessageSensitiveNeverReachesProvider(t *testing.T) {
	mock := &llm.MockClient{Response: &llm.Response{
		Content: `{"summary": "should not be used"}`,
	}}
	a := New(mock)

	res := a.Analyze(context.Background(), Request{
		SourceKind: store.SourceSMS,
		Sender:     "BANK",
		RawContent: "Your OTP is 482913. Do not share it.",
	}, Context{})

	require.NotNil(t, res)
	assert.Equal(t, FilteredSummary, res.Summary)
	assert.Equal(t, store.PriorityLow, res.Priority)
	assert.Empty(t, mock.Calls, "sensitive content must not be sent to the provider")
	assert.NotContains(t, res.Summary, "482913")
}

func TestAnalyzeMessageLeakScrubbed(t *testing.T) {
	// Content without code markers reaches the provider, but a response
	// echoing an account number is replaced wholesale.
	mock := &llm.MockClient{Response: &llm.Response{
		Content: `{"summary": "Send funds to 110-234-567890 today"}`,
	}}
	a := New(mock)

	res := a.Analyze(context.Background(), Request{
		SourceKind: store.SourceMessenger,
		Sender:     "kakao",
		RawContent: "Please wire to 110-234-567890 today",
	}, Context{})

	require.NotNil(t, res)
	assert.Equal(t, FilteredSummary, res.Summary)
	assert.Equal(t, store.PriorityLow, res.Priority)
}

func TestAnalyzeEmailMapping(t *testing.T) {
	cases := []struct {
		name     string
		response string
		priority store.Priority
		tag      string
	}{
		{
			"urgent forces critical",
			`{"category": "ADMIN", "summary": "s", "isUrgent": true}`,
			store.PriorityCritical, "ADMIN",
		},
		{
			"critical category forces critical",
			`{"category": "CRITICAL", "summary": "s", "isUrgent": false}`,
			store.PriorityCritical, "CRITICAL",
		},
		{
			"project forces high",
			`{"category": "PROJECT", "summary": "s", "isUrgent": false}`,
			store.PriorityHigh, "PROJECT",
		},
		{
			"newsletter stays normal",
			`{"category": "NEWSLETTER", "summary": "s", "isUrgent": false}`,
			store.PriorityNormal, "NEWSLETTER",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := New(&llm.MockClient{Response: &llm.Response{Content: tc.response}})
			res := a.Analyze(context.Background(), Request{
				SourceKind: store.SourceEmail,
				Subject:    "subject",
				RawContent: "body",
			}, Context{})
			require.NotNil(t, res)
			assert.Equal(t, tc.priority, res.Priority)
			assert.Equal(t, []string{tc.tag}, res.Tags)
		})
	}
}

func TestAnalyzeEmailFirstSuggestedAction(t *testing.T) {
	a := New(&llm.MockClient{Response: &llm.Response{
		Content: `{"category": "PROJECT", "summary": "s", "suggestedActions": ["Reply by noon", "Escalate"]}`,
	}})
	res := a.Analyze(context.Background(), Request{
		SourceKind: store.SourceEmail,
		RawContent: "body",
	}, Context{})
	require.NotNil(t, res)
	assert.Equal(t, "Reply by noon", res.SuggestedAction)
}

func TestAnalyzeProviderError(t *testing.T) {
	a := New(&llm.MockClient{Err: assert.AnError})
	res := a.Analyze(context.Background(), Request{
		SourceKind: store.SourceEmail,
		RawContent: "body",
	}, Context{})
	assert.Nil(t, res)
}
