package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/poopay/poopay-realtime/errors"
	"github.com/poopay/poopay-realtime/logger"
	"github.com/poopay/poopay-realtime/types"
	"go.uber.org/zap"
)

// InvitationHandler exposes accept/reject on invitation notifications and
// invitation creation.
type InvitationHandler struct {
	workflow InvitationWorkflow
	store    NotificationStore
	log      *zap.SugaredLogger
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(workflow InvitationWorkflow, store NotificationStore) *InvitationHandler {
	return &InvitationHandler{
		workflow: workflow,
		store:    store,
		log:      logger.GetLogger().Named("InvitationHandler"),
	}
}

// AcceptInvitation accepts the invitation carried by the notification.
// @Summary Accept an invitation
// @Description Accepts the group invitation carried by a group_invite notification and retires the notification
// @Tags invitations
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} types.InvitationResult
// @Failure 400 {object} middleware.ErrorResponse "Not an actionable invitation"
// @Failure 404 {object} middleware.ErrorResponse "Notification not found"
// @Failure 409 {object} middleware.ErrorResponse "Invitation is already being resolved"
// @Failure 502 {object} middleware.ErrorResponse "Backend unreachable or answered with an error"
// @Router /v1/notifications/{id}/accept [post]
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	n, ok := h.invitationNotification(c)
	if !ok {
		return
	}

	result, err := h.workflow.Accept(c.Request.Context(), n.ID, n.RelatedID)
	if err != nil {
		h.log.Warnw("Failed to accept invitation", "notificationID", n.ID, "invitationID", n.RelatedID, "error", err)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RejectInvitation rejects the invitation carried by the notification.
// @Summary Reject an invitation
// @Tags invitations
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} types.SuccessResponse
// @Failure 400 {object} middleware.ErrorResponse "Not an actionable invitation"
// @Failure 404 {object} middleware.ErrorResponse "Notification not found"
// @Failure 409 {object} middleware.ErrorResponse "Invitation is already being resolved"
// @Failure 502 {object} middleware.ErrorResponse "Backend unreachable or answered with an error"
// @Router /v1/notifications/{id}/reject [post]
func (h *InvitationHandler) RejectInvitation(c *gin.Context) {
	n, ok := h.invitationNotification(c)
	if !ok {
		return
	}

	if err := h.workflow.Reject(c.Request.Context(), n.ID, n.RelatedID); err != nil {
		h.log.Warnw("Failed to reject invitation", "notificationID", n.ID, "invitationID", n.RelatedID, "error", err)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.SuccessResponse{Success: true})
}

// InviteUser creates an invitation for the user in the body.
// @Summary Invite a user to a group
// @Tags invitations
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param request body types.InviteRequest true "User to invite"
// @Success 201 {object} types.InviteResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid request body"
// @Failure 502 {object} middleware.ErrorResponse "Backend unreachable or answered with an error"
// @Router /v1/groups/{groupId}/invite [post]
func (h *InvitationHandler) InviteUser(c *gin.Context) {
	var req types.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	groupID := c.Param("groupId")
	invitation, err := h.workflow.Invite(c.Request.Context(), groupID, req.UserID)
	if err != nil {
		h.log.Warnw("Failed to invite user", "groupID", groupID, "userID", req.UserID, "error", err)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, types.InviteResponse{Invitation: *invitation})
}

// invitationNotification looks up the notification in the path. The related
// id is passed through as stored, so an inert invitation surfaces the
// workflow's validation error.
func (h *InvitationHandler) invitationNotification(c *gin.Context) (types.Notification, bool) {
	notificationID := c.Param("id")
	n, ok := h.store.Get(notificationID)
	if !ok {
		_ = c.Error(apperrors.NotFound("notification", notificationID))
		return n, false
	}
	if n.Kind != types.KindGroupInvite {
		_ = c.Error(apperrors.ValidationFailed("notification is not an invitation", "type: "+string(n.Kind)))
		return n, false
	}
	return n, true
}
