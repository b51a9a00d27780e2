// Package session binds the live channel, the notification store and the
// invitation workflow to one signed-in identity.
package session

import (
	"context"
	"sync"

	apperrors "github.com/poopay/poopay-realtime/errors"
	"github.com/poopay/poopay-realtime/internal/store"
	"github.com/poopay/poopay-realtime/internal/websocket"
	"github.com/poopay/poopay-realtime/logger"
	"github.com/poopay/poopay-realtime/types"
	"go.uber.org/zap"
)

// Credentials identify the signed-in user.
type Credentials struct {
	Token  string
	UserID string
}

// LiveChannel is the connection manager as seen by the session.
type LiveChannel interface {
	Open(token, userID string) error
	Close()
	Connected() bool
	State() websocket.State
	Attempts() int
	Subscribe(userID string, fn websocket.Listener) func()
}

// Session is the composition root for one identity at a time.
type Session struct {
	store *store.NotificationStore
	live  LiveChannel
	log   *zap.SugaredLogger

	mu          sync.RWMutex
	creds       Credentials
	unsubscribe func()
}

// New creates a session with no identity.
func New(notifications *store.NotificationStore, live LiveChannel) *Session {
	return &Session{
		store: notifications,
		live:  live,
		log:   logger.GetLogger().Named("session"),
	}
}

// Start binds the session to creds. The live channel is opened and the store
// subscribed before the snapshot is fetched, so events racing the fetch are
// kept. A snapshot error is returned but the live channel stays up.
func (s *Session) Start(ctx context.Context, creds Credentials) error {
	if creds.Token == "" {
		return apperrors.ValidationFailed("token is required", "")
	}
	if creds.UserID == "" {
		return apperrors.ValidationFailed("user id is required", "")
	}

	s.mu.Lock()
	sameIdentity := s.creds == creds && s.unsubscribe != nil
	var previous func()
	if !sameIdentity {
		previous = s.unsubscribe
		s.unsubscribe = nil
		if s.creds.UserID != "" && s.creds.UserID != creds.UserID {
			s.store.Reset()
		}
	}
	s.creds = creds
	s.mu.Unlock()

	if previous != nil {
		previous()
	}

	if err := s.live.Open(creds.Token, creds.UserID); err != nil {
		return err
	}

	if !sameIdentity {
		unsubscribe := s.live.Subscribe(creds.UserID, func(n types.Notification) {
			if s.store.ApplyLive(n) {
				s.log.Debugw("Live notification stored", "notificationID", n.ID, "kind", n.Kind)
			}
		})
		s.mu.Lock()
		s.unsubscribe = unsubscribe
		s.mu.Unlock()
	}

	s.log.Infow("Session started", "userID", creds.UserID, "token", logger.MaskJWT(creds.Token))

	if _, err := s.store.FetchSnapshot(ctx, creds.Token); err != nil {
		s.log.Warnw("Session running without initial snapshot", "userID", creds.UserID, "error", err)
		return err
	}
	return nil
}

// Stop detaches the store, closes the live channel and clears the identity.
func (s *Session) Stop() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	userID := s.creds.UserID
	s.unsubscribe = nil
	s.creds = Credentials{}
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.live.Close()
	s.store.Reset()

	if userID != "" {
		s.log.Infow("Session stopped", "userID", userID)
	}
}

// Refresh refetches the snapshot for the current identity.
func (s *Session) Refresh(ctx context.Context) ([]types.Notification, error) {
	token := s.Token()
	if token == "" {
		return nil, apperrors.AuthenticationFailed("no signed-in user")
	}
	return s.store.FetchSnapshot(ctx, token)
}

// Token returns the current bearer token, or "" without an identity.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Token
}

// UserID returns the current user id, or "" without an identity.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.UserID
}

// Store exposes the notification collection.
func (s *Session) Store() *store.NotificationStore {
	return s.store
}

// Live exposes the connection manager.
func (s *Session) Live() LiveChannel {
	return s.live
}
