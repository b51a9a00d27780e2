// Package invitation resolves group invitations surfaced as notifications.
package invitation

import (
	"context"
	"sync"

	apperrors "github.com/poopay/poopay-realtime/errors"
	"github.com/poopay/poopay-realtime/logger"
	"github.com/poopay/poopay-realtime/types"
	"go.uber.org/zap"
)

// TokenSource yields the bearer token of the signed-in user, or "" when there
// is none.
type TokenSource interface {
	Token() string
}

// API is the subset of the backend client the workflow depends on.
type API interface {
	AcceptInvitation(ctx context.Context, token, invitationID string) (*types.InvitationResult, error)
	RejectInvitation(ctx context.Context, token, invitationID string) error
	InviteUser(ctx context.Context, token, groupID, userID string) (*types.Invitation, error)
}

// NotificationRemover retires a resolved notification locally.
type NotificationRemover interface {
	Remove(id string) bool
}

// Workflow turns an accept/reject decision on a notification into a backend
// call and retires the notification once the backend confirms.
type Workflow struct {
	api     API
	store   NotificationRemover
	tokens  TokenSource
	log     *zap.SugaredLogger
	metrics *workflowMetrics

	mu       sync.Mutex
	inflight map[string]types.Resolution
}

// NewWorkflow wires the workflow to its collaborators.
func NewWorkflow(api API, store NotificationRemover, tokens TokenSource) *Workflow {
	return &Workflow{
		api:      api,
		store:    store,
		tokens:   tokens,
		log:      logger.GetLogger().Named("invitation_workflow"),
		metrics:  newWorkflowMetrics(),
		inflight: make(map[string]types.Resolution),
	}
}

// Accept accepts the invitation relatedID carried by notificationID.
func (w *Workflow) Accept(ctx context.Context, notificationID, relatedID string) (*types.InvitationResult, error) {
	var result *types.InvitationResult
	err := w.resolve(ctx, notificationID, relatedID, types.ResolutionAccepted, func(token string) error {
		var err error
		result, err = w.api.AcceptInvitation(ctx, token, relatedID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reject rejects the invitation relatedID carried by notificationID.
func (w *Workflow) Reject(ctx context.Context, notificationID, relatedID string) error {
	return w.resolve(ctx, notificationID, relatedID, types.ResolutionRejected, func(token string) error {
		return w.api.RejectInvitation(ctx, token, relatedID)
	})
}

// InFlight reports whether a resolution for notificationID is pending.
func (w *Workflow) InFlight(notificationID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.inflight[notificationID]
	return ok
}

func (w *Workflow) resolve(ctx context.Context, notificationID, relatedID string, resolution types.Resolution, call func(token string) error) error {
	if notificationID == "" {
		return apperrors.ValidationFailed("notification id is required", "")
	}
	if relatedID == "" {
		return apperrors.ValidationFailed("invitation id is required",
			"notification "+notificationID+" carries no related invitation")
	}

	token := w.tokens.Token()
	if token == "" {
		return apperrors.AuthenticationFailed("no signed-in user")
	}

	w.mu.Lock()
	if pending, ok := w.inflight[notificationID]; ok {
		w.mu.Unlock()
		w.metrics.conflicts.Inc()
		return apperrors.Conflict("invitation already being resolved",
			"notification "+notificationID+" is pending "+string(pending))
	}
	w.inflight[notificationID] = resolution
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.inflight, notificationID)
		w.mu.Unlock()
	}()

	if err := call(token); err != nil {
		w.metrics.resolutions.WithLabelValues(string(resolution), "error").Inc()
		w.log.Warnw("Failed to resolve invitation",
			"notificationID", notificationID,
			"invitationID", relatedID,
			"resolution", resolution,
			"error", err)
		return err
	}

	w.store.Remove(notificationID)
	w.metrics.resolutions.WithLabelValues(string(resolution), "success").Inc()
	w.log.Infow("Invitation resolved",
		"notificationID", notificationID,
		"invitationID", relatedID,
		"resolution", resolution)
	return nil
}

// Invite creates an invitation for userID to join groupID.
func (w *Workflow) Invite(ctx context.Context, groupID, userID string) (*types.Invitation, error) {
	if groupID == "" || userID == "" {
		return nil, apperrors.ValidationFailed("group id and user id are required", "")
	}
	token := w.tokens.Token()
	if token == "" {
		return nil, apperrors.AuthenticationFailed("no signed-in user")
	}

	invitation, err := w.api.InviteUser(ctx, token, groupID, userID)
	if err != nil {
		w.log.Warnw("Failed to create invitation", "groupID", groupID, "userID", userID, "error", err)
		return nil, err
	}
	w.log.Infow("Invitation created", "groupID", groupID, "userID", userID)
	return invitation, nil
}
