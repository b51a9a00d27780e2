package store

import (
	"context"

	"github.com/poopay/poopay-realtime/types"
)

// NotificationAPI is the subset of the backend client the store depends on.
type NotificationAPI interface {
	ListNotifications(ctx context.Context, token string) (*types.NotificationList, error)
	UnreadCount(ctx context.Context, token string) (int, error)
	MarkAsRead(ctx context.Context, token, notificationID string) error
	DeleteNotification(ctx context.Context, token, notificationID string) error
}
