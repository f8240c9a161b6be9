// Package channel adapts channel-native events (mail, device messages,
// push notifications) into ingestion requests. Each adapter normalizes its
// payload shape to one raw-content string at this boundary; nothing past
// ingestion branches on channel internals.
package channel

import (
	"context"
	"fmt"
	"html"
	"log"
	"regexp"
	"strings"

	"github.com/jknam3036-svg/smart-news-engine/internal/ingest"
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

// MessageRef identifies one mail message in a provider listing.
type MessageRef struct {
	NativeID string
	ThreadID string
}

// BodyPart is one MIME part of a mail body.
type BodyPart struct {
	MIMEType string
	Content  string
}

// MailMessage is a provider's full view of one message.
type MailMessage struct {
	NativeID   string
	ThreadID   string
	Headers    map[string]string
	BodyParts  []BodyPart
	ReceivedAt int64 // epoch millis
}

// ComposedMessage is an outbound mail built by the engine.
type ComposedMessage struct {
	To       string
	Subject  string
	Body     string
	ThreadID string // keeps replies in the original thread
}

// MailProvider is the contract a mail backend must satisfy. The engine
// never reaches past it into provider internals.
type MailProvider interface {
	ListRecent(ctx context.Context, maxResults int) ([]MessageRef, error)
	GetDetail(ctx context.Context, nativeID string) (*MailMessage, error)
	Send(ctx context.Context, msg ComposedMessage) (string, error)
}

// MailAdapter pulls recent mail through a provider and feeds the
// ingestion pipeline.
type MailAdapter struct {
	Provider MailProvider
	Pipeline *ingest.Pipeline
	MaxSync  int
}

// NewMailAdapter creates a mail adapter syncing up to maxSync messages
// per pass.
func NewMailAdapter(provider MailProvider, pipeline *ingest.Pipeline, maxSync int) *MailAdapter {
	if maxSync <= 0 {
		maxSync = 10
	}
	return &MailAdapter{Provider: provider, Pipeline: pipeline, MaxSync: maxSync}
}

// Sync lists recent messages and ingests each one. A message that fails
// to fetch or normalize is logged and skipped; cancellation stops the
// pass, leaving already-ingested messages in place. Returns the number
// of new records created.
func (a *MailAdapter) Sync(ctx context.Context) (int, error) {
	refs, err := a.Provider.ListRecent(ctx, a.MaxSync)
	if err != nil {
		return 0, fmt.Errorf("mail sync: list recent: %w", err)
	}

	created := 0
	for _, ref := range refs {
		select {
		case <-ctx.Done():
			return created, ctx.Err()
		default:
		}

		// Skip the detail fetch for messages we already hold.
		id := ingest.DeriveID(store.SourceEmail, "", ref.NativeID)
		if exists, err := a.Pipeline.DB.Exists(id); err == nil && exists {
			continue
		}

		msg, err := a.Provider.GetDetail(ctx, ref.NativeID)
		if err != nil {
			log.Printf("mail sync: skipping %s: %v", ref.NativeID, err)
			continue
		}

		ok, err := a.Pipeline.Ingest(ctx, ingest.RawEvent{
			SourceKind: store.SourceEmail,
			NativeID:   msg.NativeID,
			Sender:     msg.Headers["From"],
			Subject:    msg.Headers["Subject"],
			Content:    FlattenBody(msg.BodyParts),
			OccurredAt: msg.ReceivedAt,
		})
		if err != nil {
			log.Printf("mail sync: skipping %s: %v", ref.NativeID, err)
			continue
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// Reply composes a reply to a stored email record and sends it through
// the provider. The record's action draft is the default body.
func (a *MailAdapter) Reply(ctx context.Context, rec *store.Record, body string) (string, error) {
	if rec == nil || rec.SourceKind != store.SourceEmail {
		return "", fmt.Errorf("mail reply: not an email record")
	}
	if body == "" {
		body = rec.ActionDraft
	}
	if body == "" {
		return "", fmt.Errorf("mail reply: no body and no action draft for %s", rec.ID)
	}

	subject := rec.Summary
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}
	return a.Provider.Send(ctx, ComposedMessage{
		To:      rec.SenderOrSource,
		Subject: subject,
		Body:    body,
	})
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// FlattenBody picks the text/plain part when present and otherwise
// strips tags from the first text/html part. Multipart structure never
// leaves the adapter.
func FlattenBody(parts []BodyPart) string {
	var htmlPart string
	for _, p := range parts {
		mime := strings.ToLower(p.MIMEType)
		switch {
		case strings.HasPrefix(mime, "text/plain"):
			if s := strings.TrimSpace(p.Content); s != "" {
				return s
			}
		case strings.HasPrefix(mime, "text/html") && htmlPart == "":
			htmlPart = p.Content
		}
	}
	if htmlPart == "" {
		return ""
	}
	stripped := htmlTag.ReplaceAllString(htmlPart, " ")
	stripped = html.UnescapeString(stripped)
	return strings.Join(strings.Fields(stripped), " ")
}
