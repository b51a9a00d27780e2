package invitation

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	apperrors "github.com/poopay/poopay-realtime/errors"
	"github.com/poopay/poopay-realtime/logger"
	"github.com/poopay/poopay-realtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	os.Exit(m.Run())
}

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) AcceptInvitation(ctx context.Context, token, invitationID string) (*types.InvitationResult, error) {
	args := m.Called(ctx, token, invitationID)
	result, _ := args.Get(0).(*types.InvitationResult)
	return result, args.Error(1)
}

func (m *mockAPI) RejectInvitation(ctx context.Context, token, invitationID string) error {
	return m.Called(ctx, token, invitationID).Error(0)
}

func (m *mockAPI) InviteUser(ctx context.Context, token, groupID, userID string) (*types.Invitation, error) {
	args := m.Called(ctx, token, groupID, userID)
	invitation, _ := args.Get(0).(*types.Invitation)
	return invitation, args.Error(1)
}

type mockRemover struct {
	mock.Mock
}

func (m *mockRemover) Remove(id string) bool {
	return m.Called(id).Bool(0)
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestAccept_RemovesOnSuccess(t *testing.T) {
	api, store := new(mockAPI), new(mockRemover)
	result := &types.InvitationResult{Success: true, Group: json.RawMessage(`{"id":3}`)}
	api.On("AcceptInvitation", mock.Anything, "tok", "inv-9").Return(result, nil).Once()
	store.On("Remove", "n-1").Return(true).Once()

	w := NewWorkflow(api, store, staticToken("tok"))
	got, err := w.Accept(context.Background(), "n-1", "inv-9")

	require.NoError(t, err)
	assert.Equal(t, result, got)
	assert.False(t, w.InFlight("n-1"))
	api.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestReject_RemovesOnSuccess(t *testing.T) {
	api, store := new(mockAPI), new(mockRemover)
	api.On("RejectInvitation", mock.Anything, "tok", "inv-9").Return(nil).Once()
	// Already gone locally is fine.
	store.On("Remove", "n-1").Return(false).Once()

	w := NewWorkflow(api, store, staticToken("tok"))
	require.NoError(t, w.Reject(context.Background(), "n-1", "inv-9"))
	store.AssertExpectations(t)
}

func TestResolve_FailureKeepsNotification(t *testing.T) {
	api, store := new(mockAPI), new(mockRemover)
	api.On("RejectInvitation", mock.Anything, "tok", "inv-9").Return(apperrors.APIFailure(404, "Invitation not found")).Once()
	api.On("AcceptInvitation", mock.Anything, "tok", "inv-9").Return(nil, apperrors.APIFailure(500, "boom")).Once()

	w := NewWorkflow(api, store, staticToken("tok"))

	err := w.Reject(context.Background(), "n-1", "inv-9")
	assert.True(t, apperrors.IsType(err, apperrors.APIError))
	assert.Equal(t, 404, apperrors.StatusOf(err))

	result, err := w.Accept(context.Background(), "n-1", "inv-9")
	assert.Nil(t, result)
	assert.Error(t, err)

	store.AssertNotCalled(t, "Remove", mock.Anything)
	assert.False(t, w.InFlight("n-1"))
}

func TestResolve_PreconditionsSkipNetwork(t *testing.T) {
	api, store := new(mockAPI), new(mockRemover)

	w := NewWorkflow(api, store, staticToken("tok"))
	_, err := w.Accept(context.Background(), "n-1", "")
	assert.True(t, apperrors.IsType(err, apperrors.ValidationError))
	err = w.Reject(context.Background(), "n-1", "")
	assert.True(t, apperrors.IsType(err, apperrors.ValidationError))
	err = w.Reject(context.Background(), "", "inv-9")
	assert.True(t, apperrors.IsType(err, apperrors.ValidationError))

	anonymous := NewWorkflow(api, store, staticToken(""))
	_, err = anonymous.Accept(context.Background(), "n-1", "inv-9")
	assert.True(t, apperrors.IsType(err, apperrors.AuthError))
	_, err = anonymous.Invite(context.Background(), "g-1", "u-2")
	assert.True(t, apperrors.IsType(err, apperrors.AuthError))

	api.AssertNotCalled(t, "AcceptInvitation", mock.Anything, mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "RejectInvitation", mock.Anything, mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "InviteUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Remove", mock.Anything)
}

func TestResolve_SecondResolutionWhileInFlightConflicts(t *testing.T) {
	api, store := new(mockAPI), new(mockRemover)
	started, release := make(chan struct{}), make(chan struct{})
	api.On("AcceptInvitation", mock.Anything, "tok", "inv-9").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&types.InvitationResult{Success: true}, nil).
		Once()
	store.On("Remove", "n-1").Return(true).Once()

	w := NewWorkflow(api, store, staticToken("tok"))

	done := make(chan error, 1)
	go func() {
		_, err := w.Accept(context.Background(), "n-1", "inv-9")
		done <- err
	}()
	<-started
	assert.True(t, w.InFlight("n-1"))

	err := w.Reject(context.Background(), "n-1", "inv-9")
	assert.True(t, apperrors.IsType(err, apperrors.ConflictError))
	_, err = w.Accept(context.Background(), "n-1", "inv-9")
	assert.True(t, apperrors.IsType(err, apperrors.ConflictError))

	close(release)
	require.NoError(t, <-done)
	api.AssertNumberOfCalls(t, "AcceptInvitation", 1)
	api.AssertNotCalled(t, "RejectInvitation", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestInvite(t *testing.T) {
	api, store := new(mockAPI), new(mockRemover)
	invitation := &types.Invitation{ID: "inv-1", GroupID: "g-1", InviteeID: "u-2", Status: "pending"}
	api.On("InviteUser", mock.Anything, "tok", "g-1", "u-2").Return(invitation, nil).Once()

	w := NewWorkflow(api, store, staticToken("tok"))
	got, err := w.Invite(context.Background(), "g-1", "u-2")
	require.NoError(t, err)
	assert.Equal(t, invitation, got)

	_, err = w.Invite(context.Background(), "", "u-2")
	assert.True(t, apperrors.IsType(err, apperrors.ValidationError))
	api.AssertExpectations(t)
}
