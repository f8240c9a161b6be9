package ingest

import (
	"strings"

	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

// DeriveID builds the stable, channel-qualified identifier for an inbound
// event. It is a pure function of its inputs: re-deriving from the same
// native event always yields the same id, which is what makes repeated
// delivery collapse to one record. Native ids may repeat across channels
// but never within one, so the kind (and subtype, when present) qualifies
// the namespace.
func DeriveID(kind store.SourceKind, channelSubtype, nativeID string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(kind)))
	if channelSubtype != "" {
		b.WriteString(":")
		b.WriteString(strings.ToLower(channelSubtype))
	}
	b.WriteString(":")
	b.WriteString(nativeID)
	return b.String()
}
