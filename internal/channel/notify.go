package channel

import (
	"context"
	"log"
	"strings"

	"github.com/jknam3036-svg/smart-news-engine/internal/ingest"
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

// Notification is one push event from the platform notification stream.
type Notification struct {
	AppIdentifier   string
	NotificationKey string
	Title           string
	Text            string
	PostTimeMillis  int64
}

// queueDepth bounds the inbound notification queue. Producers never
// block: when the drain loop falls behind, the oldest pressure shows up
// as dropped (and logged) events rather than a stalled platform callback.
const queueDepth = 64

// subtypeNames maps well-known app identifiers to short channel subtype
// labels. Unlisted but allowed apps fall back to the identifier's last
// dot segment.
var subtypeNames = map[string]string{
	"com.kakao.talk":                     "kakao",
	"jp.naver.line.android":              "line",
	"com.slack":                          "slack",
	"org.telegram.messenger":             "telegram",
	"com.google.android.gm":              "gmail",
	"com.samsung.android.email.provider": "email",
}

// NotificationCapture receives push notifications, drops events from
// unrecognized applications, and drains the rest into the ingestion
// pipeline in arrival order.
type NotificationCapture struct {
	Pipeline *ingest.Pipeline

	allowed map[string]bool
	queue   chan Notification
}

// NewNotificationCapture creates a capture restricted to the given app
// identifiers.
func NewNotificationCapture(pipeline *ingest.Pipeline, allowedApps []string) *NotificationCapture {
	allowed := make(map[string]bool, len(allowedApps))
	for _, app := range allowedApps {
		allowed[app] = true
	}
	return &NotificationCapture{
		Pipeline: pipeline,
		allowed:  allowed,
		queue:    make(chan Notification, queueDepth),
	}
}

// Offer enqueues a notification without blocking the producer. Events
// from apps outside the allow-list are dropped before they ever reach
// the identity path; a full queue drops the event with a log line.
func (c *NotificationCapture) Offer(n Notification) bool {
	if !c.allowed[n.AppIdentifier] {
		return false
	}
	select {
	case c.queue <- n:
		return true
	default:
		log.Printf("notify: queue full, dropping %s/%s", n.AppIdentifier, n.NotificationKey)
		return false
	}
}

// Run drains the queue sequentially until the context is cancelled.
// Sequential draining preserves arrival order within the channel.
func (c *NotificationCapture) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-c.queue:
			c.ingest(ctx, n)
		}
	}
}

func (c *NotificationCapture) ingest(ctx context.Context, n Notification) {
	content := n.Text
	if n.Title != "" {
		content = n.Title + ": " + n.Text
	}

	_, err := c.Pipeline.Ingest(ctx, ingest.RawEvent{
		SourceKind:     store.SourceMessenger,
		ChannelSubtype: subtypeFor(n.AppIdentifier),
		NativeID:       n.NotificationKey,
		Sender:         n.Title,
		Content:        content,
		OccurredAt:     n.PostTimeMillis,
	})
	if err != nil {
		log.Printf("notify: skipping %s/%s: %v", n.AppIdentifier, n.NotificationKey, err)
	}
}

func subtypeFor(appIdentifier string) string {
	if name, ok := subtypeNames[appIdentifier]; ok {
		return name
	}
	parts := strings.Split(appIdentifier, ".")
	return parts[len(parts)-1]
}
