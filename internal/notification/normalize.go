package notification

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/poopay/poopay-realtime/types"
)

// ErrMalformedNotification is returned for payloads without an id.
var ErrMalformedNotification = errors.New("malformed notification: missing id")

// timestampLayouts are tried in order. The backend emits ISO-8601 with a zone;
// some database drivers return the bare SQL form.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Normalize converts a wire notification into the domain shape. Every
// snake_case/camelCase fallback lives here:
//
//	id         id (string or number)
//	user id    user_id, then userId
//	timestamp  created_at, then createdAt; unparseable gives the zero time
//	related id related_id, then relatedId; null or empty means absent
//	read       is_read, then isRead; absent means unread
//	kind       type, unknown values become info
func Normalize(raw types.RawNotification) (types.Notification, error) {
	id := strings.TrimSpace(raw.ID.String())
	if id == "" {
		return types.Notification{}, ErrMalformedNotification
	}

	return types.Notification{
		ID:        id,
		UserID:    firstNonEmpty(raw.UserID.String(), raw.UserIDAlt.String()),
		Title:     raw.Title,
		Message:   raw.Message,
		Timestamp: ParseTimestamp(firstNonEmpty(raw.CreatedAt, raw.CreatedAtAlt)),
		Kind:      types.ParseKind(raw.Type),
		RelatedID: firstNonEmpty(raw.RelatedID.String(), raw.RelatedIDAlt.String()),
		IsRead:    readFlag(raw),
	}, nil
}

// NormalizeList decodes and normalizes a snapshot in order. Entries that do
// not decode or carry no id are skipped and counted instead of failing the
// whole snapshot.
func NormalizeList(entries []json.RawMessage) ([]types.Notification, int) {
	out := make([]types.Notification, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		var raw types.RawNotification
		if err := json.Unmarshal(entry, &raw); err != nil {
			skipped++
			continue
		}
		n, err := Normalize(raw)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, n)
	}
	return out, skipped
}

// ParseTimestamp parses a server creation time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func readFlag(raw types.RawNotification) bool {
	if raw.IsRead != nil {
		return raw.IsRead.Bool()
	}
	return raw.IsReadAlt.Bool()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
