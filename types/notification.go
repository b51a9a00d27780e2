package types

import (
	"encoding/json"
	"time"
)

// Kind is the closed set of notification categories the backend emits.
type Kind string

const (
	KindGroupInvite Kind = "group_invite"
	KindChallenge   Kind = "challenge"
	KindAchievement Kind = "achievement"
	KindInfo        Kind = "info"
)

// ParseKind maps a wire value onto a Kind. Anything outside the known set is
// treated as KindInfo.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindGroupInvite, KindChallenge, KindAchievement, KindInfo:
		return Kind(s)
	default:
		return KindInfo
	}
}

// Notification is a single alert surfaced to the current user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"type"`
	RelatedID string    `json:"relatedId,omitempty"`
	IsRead    bool      `json:"isRead"`
}

// Actionable reports whether the notification is an invitation that can be
// accepted or rejected. A group_invite without a related id is inert.
func (n Notification) Actionable() bool {
	return n.Kind == KindGroupInvite && n.RelatedID != ""
}

// RawNotification is the backend's wire shape. The REST API uses snake_case,
// some live frames arrive camelCased, so both spellings are captured and
// resolved by the normalization boundary.
type RawNotification struct {
	ID           FlexString `json:"id"`
	UserID       FlexString `json:"user_id,omitempty"`
	UserIDAlt    FlexString `json:"userId,omitempty"`
	Type         string     `json:"type"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	RelatedID    FlexString `json:"related_id,omitempty"`
	RelatedIDAlt FlexString `json:"relatedId,omitempty"`
	IsRead       *FlexBool  `json:"is_read,omitempty"`
	IsReadAlt    *FlexBool  `json:"isRead,omitempty"`
	CreatedAt    string     `json:"created_at,omitempty"`
	CreatedAtAlt string     `json:"createdAt,omitempty"`
	UpdatedAt    string     `json:"updated_at,omitempty"`
	UpdatedAtAlt string     `json:"updatedAt,omitempty"`
}

// NotificationList is the body of GET /notifications. Entries stay raw so one
// malformed entry cannot fail the whole list.
type NotificationList struct {
	Notifications []json.RawMessage `json:"notifications"`
	UnreadCount   int               `json:"unread_count"`
}

// UnreadCount is the body of GET /notifications/unread-count.
type UnreadCount struct {
	Count int `json:"count"`
}

// SuccessResponse is the acknowledgement body of the mutation endpoints.
type SuccessResponse struct {
	Success bool `json:"success"`
}
