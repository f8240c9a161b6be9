package channel

import (
	"context"
	"testing"
	"time"

	"github.com/jknam3036-svg/smart-news-engine/internal/ingest"
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

func testCapture(t *testing.T, allowed []string) (*NotificationCapture, *store.DB) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	pipeline := ingest.New(db, nil, nil, nil)
	return NewNotificationCapture(pipeline, allowed), db
}

func TestOfferDropsUnrecognizedApps(t *testing.T) {
	c, _ := testCapture(t, []string{"com.kakao.talk"})

	if c.Offer(Notification{AppIdentifier: "com.evil.app", NotificationKey: "k1", Text: "hi"}) {
		t.Error("unrecognized app should be dropped")
	}
	if !c.Offer(Notification{AppIdentifier: "com.kakao.talk", NotificationKey: "k1", Text: "hi"}) {
		t.Error("allow-listed app should be accepted")
	}
}

func TestOfferNeverBlocks(t *testing.T) {
	c, _ := testCapture(t, []string{"com.kakao.talk"})

	// No drain loop running: fill the queue and keep offering.
	accepted := 0
	for i := 0; i < queueDepth*2; i++ {
		if c.Offer(Notification{AppIdentifier: "com.kakao.talk", NotificationKey: "k", Text: "x"}) {
			accepted++
		}
	}
	if accepted != queueDepth {
		t.Errorf("accepted = %d, want %d (rest dropped, none blocked)", accepted, queueDepth)
	}
}

func TestRunDrainsInOrder(t *testing.T) {
	c, db := testCapture(t, []string{"com.kakao.talk", "com.slack"})

	c.Offer(Notification{AppIdentifier: "com.kakao.talk", NotificationKey: "k1", Title: "Alice", Text: "lunch?", PostTimeMillis: 1000})
	c.Offer(Notification{AppIdentifier: "com.slack", NotificationKey: "s1", Title: "ops", Text: "deploy done", PostTimeMillis: 2000})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	waitFor(t, func() bool {
		n, _ := db.CountRecords()
		return n == 2
	})

	rec, _ := db.GetRecord("messenger:kakao:k1")
	if rec == nil {
		t.Fatal("kakao notification not ingested")
	}
	if rec.RawContent != "Alice: lunch?" {
		t.Errorf("content = %q", rec.RawContent)
	}
	if rec.SenderOrSource != "Alice" {
		t.Errorf("sender = %q", rec.SenderOrSource)
	}

	slack, _ := db.GetRecord("messenger:slack:s1")
	if slack == nil {
		t.Fatal("slack notification not ingested")
	}
	if slack.CapturedAt != 2000 {
		t.Errorf("captured_at = %d, want post time", slack.CapturedAt)
	}
}

func TestSubtypeFallback(t *testing.T) {
	if got := subtypeFor("com.kakao.talk"); got != "kakao" {
		t.Errorf("subtype = %q, want kakao", got)
	}
	if got := subtypeFor("io.example.chatapp"); got != "chatapp" {
		t.Errorf("subtype = %q, want last segment", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
