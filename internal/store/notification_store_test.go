package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

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

func (m *mockAPI) ListNotifications(ctx context.Context, token string) (*types.NotificationList, error) {
	args := m.Called(ctx, token)
	list, _ := args.Get(0).(*types.NotificationList)
	return list, args.Error(1)
}

func (m *mockAPI) UnreadCount(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}

func (m *mockAPI) MarkAsRead(ctx context.Context, token, notificationID string) error {
	return m.Called(ctx, token, notificationID).Error(0)
}

func (m *mockAPI) DeleteNotification(ctx context.Context, token, notificationID string) error {
	return m.Called(ctx, token, notificationID).Error(0)
}

// rawList builds a snapshot body with one entry per id, newest first.
func rawList(t *testing.T, ids ...string) *types.NotificationList {
	t.Helper()
	list := &types.NotificationList{Notifications: []json.RawMessage{}}
	for _, id := range ids {
		body := fmt.Sprintf(`{"id":%q,"user_id":"7","title":"t%s","message":"m","type":"info","is_read":false,"created_at":"2024-05-01T10:00:00Z"}`, id, id)
		require.True(t, json.Valid([]byte(body)))
		list.Notifications = append(list.Notifications, json.RawMessage(body))
	}
	list.UnreadCount = len(ids)
	return list
}

func live(id string) types.Notification {
	return types.Notification{ID: id, UserID: "7", Title: "live " + id, Kind: types.KindInfo}
}

func ids(list []types.Notification) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

// blockingList makes the next ListNotifications call signal started and wait
// for release before returning list.
func blockingList(api *mockAPI, list *types.NotificationList, started chan<- struct{}, release <-chan struct{}) {
	api.On("ListNotifications", mock.Anything, "tok").
		Run(func(mock.Arguments) {
			started <- struct{}{}
			<-release
		}).
		Return(list, nil).
		Once()
}

func TestFetchSnapshot_ReplacesCollection(t *testing.T) {
	api := new(mockAPI)
	api.On("ListNotifications", mock.Anything, "tok").Return(rawList(t, "3", "2", "1"), nil).Once()
	s := NewNotificationStore(api)
	s.ApplyLive(live("old"))

	got, err := s.FetchSnapshot(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2", "1"}, ids(got))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 3, s.UnreadCount())
	assert.False(t, s.Loading())
	api.AssertExpectations(t)
}

func TestFetchSnapshot_ErrorLeavesCollection(t *testing.T) {
	api := new(mockAPI)
	api.On("ListNotifications", mock.Anything, "tok").
		Return(nil, apperrors.APIFailure(500, "boom")).Once()
	s := NewNotificationStore(api)
	s.ApplyLive(live("1"))

	_, err := s.FetchSnapshot(context.Background(), "tok")
	assert.True(t, apperrors.IsType(err, apperrors.APIError))
	assert.Equal(t, []string{"1"}, ids(s.List()))
	assert.False(t, s.Loading())
}

func TestFetchSnapshot_SkipsMalformedEntries(t *testing.T) {
	list := rawList(t, "1")
	list.Notifications = append(list.Notifications,
		json.RawMessage(`{"title":"missing id"}`),
		json.RawMessage(`{"id":2,"related_id":{"x":1}}`),
		json.RawMessage(`{"id":3,"is_read":"yes"}`))

	api := new(mockAPI)
	api.On("ListNotifications", mock.Anything, "tok").Return(list, nil).Once()
	s := NewNotificationStore(api)

	got, err := s.FetchSnapshot(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestFetchSnapshot_EmptyBodyLeavesCollection(t *testing.T) {
	api := new(mockAPI)
	api.On("ListNotifications", mock.Anything, "tok").
		Return(nil, apperrors.Decode(errors.New("empty response body"), "failed to decode list response")).Once()
	api.On("ListNotifications", mock.Anything, "tok").Return(nil, nil).Once()
	s := NewNotificationStore(api)
	s.ApplyLive(live("1"))
	s.ApplyLive(live("2"))

	_, err := s.FetchSnapshot(context.Background(), "tok")
	assert.True(t, apperrors.IsType(err, apperrors.DecodeError))
	assert.Equal(t, []string{"2", "1"}, ids(s.List()))

	_, err = s.FetchSnapshot(context.Background(), "tok")
	assert.True(t, apperrors.IsType(err, apperrors.DecodeError))
	assert.Equal(t, []string{"2", "1"}, ids(s.List()))
	assert.Equal(t, 2, s.UnreadCount())
	assert.False(t, s.Loading())
	api.AssertExpectations(t)
}

func TestApplyLive_Dedupes(t *testing.T) {
	s := NewNotificationStore(new(mockAPI))

	assert.True(t, s.ApplyLive(live("1")))
	assert.True(t, s.ApplyLive(live("2")))
	assert.False(t, s.ApplyLive(live("1")))
	assert.Equal(t, []string{"2", "1"}, ids(s.List()))
}

func TestUnreadCountIsDerived(t *testing.T) {
	api := new(mockAPI)
	api.On("MarkAsRead", mock.Anything, "tok", "1").Return(nil)
	s := NewNotificationStore(api)
	s.ApplyLive(live("1"))
	s.ApplyLive(live("2"))

	assert.Equal(t, 2, s.UnreadCount())
	require.NoError(t, s.MarkAsRead(context.Background(), "tok", "1"))
	assert.Equal(t, 1, s.UnreadCount())

	// A second mark succeeds and changes nothing.
	require.NoError(t, s.MarkAsRead(context.Background(), "tok", "1"))
	assert.Equal(t, 1, s.UnreadCount())

	n, ok := s.Get("1")
	require.True(t, ok)
	assert.True(t, n.IsRead)
}

func TestMarkAsRead_FailureLeavesState(t *testing.T) {
	api := new(mockAPI)
	api.On("MarkAsRead", mock.Anything, "tok", "1").Return(apperrors.Transport(errors.New("offline"), "request failed"))
	s := NewNotificationStore(api)
	s.ApplyLive(live("1"))

	err := s.MarkAsRead(context.Background(), "tok", "1")
	assert.True(t, apperrors.IsType(err, apperrors.TransportError))
	n, _ := s.Get("1")
	assert.False(t, n.IsRead)

	err = s.MarkAsRead(context.Background(), "tok", "")
	assert.True(t, apperrors.IsType(err, apperrors.ValidationError))
	api.AssertNumberOfCalls(t, "MarkAsRead", 1)
}

func TestDeleteNotification_ConfirmedOnly(t *testing.T) {
	api := new(mockAPI)
	api.On("DeleteNotification", mock.Anything, "tok", "1").Return(apperrors.APIFailure(500, "nope")).Once()
	api.On("DeleteNotification", mock.Anything, "tok", "1").Return(nil).Once()
	s := NewNotificationStore(api)
	s.ApplyLive(live("1"))

	require.Error(t, s.DeleteNotification(context.Background(), "tok", "1"))
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.DeleteNotification(context.Background(), "tok", "1"))
	assert.Zero(t, s.Len())
	api.AssertExpectations(t)
}

func TestRemove(t *testing.T) {
	s := NewNotificationStore(new(mockAPI))
	s.ApplyLive(live("1"))

	assert.True(t, s.Remove("1"))
	assert.False(t, s.Remove("1"))
	assert.Zero(t, s.Len())
}

func TestServerUnreadCount(t *testing.T) {
	api := new(mockAPI)
	api.On("UnreadCount", mock.Anything, "tok").Return(4, nil)
	s := NewNotificationStore(api)

	count, err := s.ServerUnreadCount(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestFetchSnapshot_KeepsLiveArrivalsDuringFetch(t *testing.T) {
	api := new(mockAPI)
	started, release := make(chan struct{}, 1), make(chan struct{})
	blockingList(api, rawList(t, "2", "1"), started, release)
	s := NewNotificationStore(api)

	done := make(chan error, 1)
	go func() {
		_, err := s.FetchSnapshot(context.Background(), "tok")
		done <- err
	}()
	<-started
	assert.True(t, s.Loading())

	s.ApplyLive(live("3"))
	s.ApplyLive(live("4"))
	s.ApplyLive(live("2"))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(s.List()))
	n, _ := s.Get("2")
	assert.Equal(t, "t2", n.Title)
}

func TestFetchSnapshot_DoesNotRevertMutations(t *testing.T) {
	api := new(mockAPI)
	started, release := make(chan struct{}, 1), make(chan struct{})
	blockingList(api, rawList(t, "3", "2", "1"), started, release)
	api.On("MarkAsRead", mock.Anything, "tok", "2").Return(nil)
	api.On("DeleteNotification", mock.Anything, "tok", "3").Return(nil)
	s := NewNotificationStore(api)

	done := make(chan error, 1)
	go func() {
		_, err := s.FetchSnapshot(context.Background(), "tok")
		done <- err
	}()
	<-started

	require.NoError(t, s.MarkAsRead(context.Background(), "tok", "2"))
	require.NoError(t, s.DeleteNotification(context.Background(), "tok", "3"))
	s.Remove("1")
	close(release)
	require.NoError(t, <-done)

	got := s.List()
	require.Equal(t, []string{"2"}, ids(got))
	assert.True(t, got[0].IsRead)
	assert.Zero(t, s.UnreadCount())
}

func TestFetchSnapshot_OlderSnapshotIsDiscarded(t *testing.T) {
	api := new(mockAPI)
	startedA, releaseA := make(chan struct{}, 1), make(chan struct{})
	startedB, releaseB := make(chan struct{}, 1), make(chan struct{})
	blockingList(api, rawList(t, "old"), startedA, releaseA)
	blockingList(api, rawList(t, "new"), startedB, releaseB)
	s := NewNotificationStore(api)

	doneA := make(chan error, 1)
	go func() {
		_, err := s.FetchSnapshot(context.Background(), "tok")
		doneA <- err
	}()
	<-startedA

	doneB := make(chan error, 1)
	go func() {
		_, err := s.FetchSnapshot(context.Background(), "tok")
		doneB <- err
	}()
	<-startedB

	close(releaseB)
	require.NoError(t, <-doneB)
	close(releaseA)
	require.NoError(t, <-doneA)

	assert.Equal(t, []string{"new"}, ids(s.List()))
	assert.False(t, s.Loading())
}

func TestReset_DiscardsInflightSnapshot(t *testing.T) {
	api := new(mockAPI)
	started, release := make(chan struct{}, 1), make(chan struct{})
	blockingList(api, rawList(t, "1"), started, release)
	s := NewNotificationStore(api)
	s.ApplyLive(live("x"))

	done := make(chan error, 1)
	go func() {
		_, err := s.FetchSnapshot(context.Background(), "tok")
		done <- err
	}()
	<-started
	s.Reset()
	close(release)
	require.NoError(t, <-done)

	assert.Zero(t, s.Len())
}

func TestConcurrentAccess(t *testing.T) {
	api := new(mockAPI)
	api.On("ListNotifications", mock.Anything, "tok").Return(rawList(t, "a", "b"), nil)
	api.On("MarkAsRead", mock.Anything, "tok", mock.Anything).Return(nil)
	s := NewNotificationStore(api)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			s.ApplyLive(live(fmt.Sprintf("live-%d", i)))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = s.FetchSnapshot(context.Background(), "tok")
		}()
		go func(i int) {
			defer wg.Done()
			_ = s.MarkAsRead(context.Background(), "tok", fmt.Sprintf("live-%d", i))
			_ = s.UnreadCount()
		}(i)
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent store operations did not finish")
	}

	assert.False(t, s.Loading())
	seen := map[string]bool{}
	for _, n := range s.List() {
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}
