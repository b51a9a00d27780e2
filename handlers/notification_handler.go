package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/poopay/poopay-realtime/errors"
	"github.com/poopay/poopay-realtime/logger"
	"github.com/poopay/poopay-realtime/types"
	"go.uber.org/zap"
)

// NotificationListResponse is the body of the list and refresh endpoints.
type NotificationListResponse struct {
	Notifications []types.Notification `json:"notifications"`
	UnreadCount   int                  `json:"unreadCount"`
}

// UnreadCountResponse is the body of the unread-count endpoint.
type UnreadCountResponse struct {
	Count  int    `json:"count"`
	Source string `json:"source"`
}

// NotificationHandler handles HTTP requests related to notifications.
type NotificationHandler struct {
	session SessionService
	store   NotificationStore
	log     *zap.SugaredLogger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(session SessionService, store NotificationStore) *NotificationHandler {
	return &NotificationHandler{
		session: session,
		store:   store,
		log:     logger.GetLogger().Named("NotificationHandler"),
	}
}

// ListNotifications returns the stored notifications, newest first.
// @Summary List notifications
// @Description Returns the locally held notifications of the signed-in user, newest first
// @Tags notifications
// @Produce json
// @Success 200 {object} NotificationListResponse
// @Router /v1/notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, NotificationListResponse{
		Notifications: h.store.List(),
		UnreadCount:   h.store.UnreadCount(),
	})
}

// RefreshNotifications refetches the snapshot from the backend.
// @Summary Refresh notifications
// @Description Fetches a fresh snapshot from the backend and reconciles it with live arrivals
// @Tags notifications
// @Produce json
// @Success 200 {object} NotificationListResponse
// @Failure 401 {object} middleware.ErrorResponse "No signed-in user"
// @Failure 502 {object} middleware.ErrorResponse "Backend unreachable or answered with an error"
// @Router /v1/notifications/refresh [post]
func (h *NotificationHandler) RefreshNotifications(c *gin.Context) {
	notifications, err := h.session.Refresh(c.Request.Context())
	if err != nil {
		h.log.Warnw("Failed to refresh notifications", "error", err)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   h.store.UnreadCount(),
	})
}

// GetUnreadCount returns the derived unread count, or the backend's when
// called with ?source=server.
// @Summary Get unread count
// @Description Returns the unread count derived from the local collection, or the backend's count with source=server
// @Tags notifications
// @Produce json
// @Param source query string false "Set to 'server' to ask the backend"
// @Success 200 {object} UnreadCountResponse
// @Failure 401 {object} middleware.ErrorResponse "No signed-in user"
// @Failure 502 {object} middleware.ErrorResponse "Backend unreachable or answered with an error"
// @Router /v1/notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	if c.Query("source") != "server" {
		c.JSON(http.StatusOK, UnreadCountResponse{Count: h.store.UnreadCount(), Source: "local"})
		return
	}

	token, ok := h.requireToken(c)
	if !ok {
		return
	}
	count, err := h.store.ServerUnreadCount(c.Request.Context(), token)
	if err != nil {
		h.log.Warnw("Failed to fetch server unread count", "error", err)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, UnreadCountResponse{Count: count, Source: "server"})
}

// MarkNotificationAsRead marks a notification as read once the backend confirms.
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} types.SuccessResponse
// @Failure 401 {object} middleware.ErrorResponse "No signed-in user"
// @Failure 502 {object} middleware.ErrorResponse "Backend unreachable or answered with an error"
// @Router /v1/notifications/{id}/read [post]
func (h *NotificationHandler) MarkNotificationAsRead(c *gin.Context) {
	token, ok := h.requireToken(c)
	if !ok {
		return
	}

	notificationID := c.Param("id")
	if err := h.store.MarkAsRead(c.Request.Context(), token, notificationID); err != nil {
		h.log.Warnw("Failed to mark notification as read", "notificationID", notificationID, "error", err)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.SuccessResponse{Success: true})
}

// DeleteNotification deletes a notification once the backend confirms.
// @Summary Delete a notification
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} types.SuccessResponse
// @Failure 401 {object} middleware.ErrorResponse "No signed-in user"
// @Failure 502 {object} middleware.ErrorResponse "Backend unreachable or answered with an error"
// @Router /v1/notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	token, ok := h.requireToken(c)
	if !ok {
		return
	}

	notificationID := c.Param("id")
	if err := h.store.DeleteNotification(c.Request.Context(), token, notificationID); err != nil {
		h.log.Warnw("Failed to delete notification", "notificationID", notificationID, "error", err)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.SuccessResponse{Success: true})
}

func (h *NotificationHandler) requireToken(c *gin.Context) (string, bool) {
	token := h.session.Token()
	if token == "" {
		_ = c.Error(apperrors.AuthenticationFailed("no signed-in user"))
		return "", false
	}
	return token, true
}
