package handlers

import (
	"context"

	"github.com/poopay/poopay-realtime/types"
)

// SessionService is the identity side of the session the handlers act for.
type SessionService interface {
	Token() string
	Refresh(ctx context.Context) ([]types.Notification, error)
}

// NotificationStore is the notification collection the handlers read and mutate.
type NotificationStore interface {
	List() []types.Notification
	Get(id string) (types.Notification, bool)
	UnreadCount() int
	ServerUnreadCount(ctx context.Context, token string) (int, error)
	MarkAsRead(ctx context.Context, token, id string) error
	DeleteNotification(ctx context.Context, token, id string) error
}

// InvitationWorkflow resolves and creates group invitations.
type InvitationWorkflow interface {
	Accept(ctx context.Context, notificationID, relatedID string) (*types.InvitationResult, error)
	Reject(ctx context.Context, notificationID, relatedID string) error
	Invite(ctx context.Context, groupID, userID string) (*types.Invitation, error)
}
