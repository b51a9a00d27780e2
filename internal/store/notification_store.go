// Package store keeps the client-side notification collection for the
// signed-in user and reconciles it with backend snapshots and live events.
package store

import (
	"context"
	"sync"

	apperrors "github.com/poopay/poopay-realtime/errors"
	"github.com/poopay/poopay-realtime/internal/notification"
	"github.com/poopay/poopay-realtime/logger"
	"github.com/poopay/poopay-realtime/types"
	"go.uber.org/zap"
)

type mutationKind int

const (
	mutationInsert mutationKind = iota
	mutationRead
	mutationRemove
)

// mutation is a local change recorded while at least one snapshot is in
// flight, so the snapshot can be reconciled against it when it lands.
type mutation struct {
	seq          uint64
	kind         mutationKind
	id           string
	notification types.Notification
}

// NotificationStore is the ordered, newest-first notification collection.
// Network calls are made without holding the lock.
type NotificationStore struct {
	api NotificationAPI
	log *zap.SugaredLogger

	mu         sync.Mutex
	items      []types.Notification
	seq        uint64
	generation uint64
	mutations  []mutation
	inflight   map[uint64]int
	applied    bool
	appliedAt  uint64
}

// NewNotificationStore creates an empty store backed by api.
func NewNotificationStore(api NotificationAPI) *NotificationStore {
	return &NotificationStore{
		api:      api,
		log:      logger.GetLogger().Named("notification_store"),
		inflight: make(map[uint64]int),
	}
}

// FetchSnapshot replaces the collection with the backend's list. On error the
// collection is left untouched. Local changes made after the fetch started
// win over the snapshot, and a snapshot older than one already applied is
// discarded.
func (s *NotificationStore) FetchSnapshot(ctx context.Context, token string) ([]types.Notification, error) {
	s.mu.Lock()
	s.seq++
	start := s.seq
	generation := s.generation
	s.inflight[start]++
	s.mu.Unlock()

	list, err := s.api.ListNotifications(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.finishSnapshot(start)

	if err != nil {
		s.log.Warnw("Failed to fetch notification snapshot", "error", err)
		return nil, err
	}
	if list == nil {
		s.log.Warnw("Notification snapshot had no body")
		return nil, apperrors.New(apperrors.DecodeError, "notification snapshot is empty", "")
	}

	if generation != s.generation {
		s.log.Debugw("Discarding snapshot fetched before reset")
		return s.listLocked(), nil
	}
	if s.applied && start < s.appliedAt {
		s.log.Debugw("Discarding stale snapshot", "startedAt", start, "newestApplied", s.appliedAt)
		return s.listLocked(), nil
	}

	snapshot, skipped := notification.NormalizeList(list.Notifications)
	if skipped > 0 {
		s.log.Warnw("Skipped malformed notifications in snapshot", "skipped", skipped)
	}

	s.items = s.reconcileLocked(snapshot, start)
	s.applied = true
	s.appliedAt = start

	s.log.Debugw("Applied notification snapshot",
		"count", len(s.items),
		"serverUnread", list.UnreadCount)
	return s.listLocked(), nil
}

func (s *NotificationStore) reconcileLocked(snapshot []types.Notification, start uint64) []types.Notification {
	removed := make(map[string]bool)
	read := make(map[string]bool)
	var inserted []types.Notification

	for _, m := range s.mutations {
		if m.seq <= start {
			continue
		}
		switch m.kind {
		case mutationInsert:
			inserted = append(inserted, m.notification)
		case mutationRead:
			read[m.id] = true
		case mutationRemove:
			removed[m.id] = true
		}
	}

	inSnapshot := make(map[string]bool, len(snapshot))
	for _, n := range snapshot {
		inSnapshot[n.ID] = true
	}

	seen := make(map[string]bool, len(snapshot)+len(inserted))
	out := make([]types.Notification, 0, len(snapshot)+len(inserted))
	add := func(n types.Notification) {
		if seen[n.ID] || removed[n.ID] {
			return
		}
		if read[n.ID] {
			n.IsRead = true
		}
		seen[n.ID] = true
		out = append(out, n)
	}

	// Live inserts were prepended, so the latest is at the end of the log.
	for i := len(inserted) - 1; i >= 0; i-- {
		if !inSnapshot[inserted[i].ID] {
			add(inserted[i])
		}
	}
	for _, n := range snapshot {
		add(n)
	}
	return out
}

func (s *NotificationStore) finishSnapshot(start uint64) {
	s.inflight[start]--
	if s.inflight[start] <= 0 {
		delete(s.inflight, start)
	}

	if len(s.inflight) == 0 {
		s.mutations = nil
		return
	}

	oldest := s.seq
	for seq := range s.inflight {
		if seq < oldest {
			oldest = seq
		}
	}
	kept := s.mutations[:0]
	for _, m := range s.mutations {
		if m.seq > oldest {
			kept = append(kept, m)
		}
	}
	s.mutations = kept
}

func (s *NotificationStore) recordLocked(kind mutationKind, id string, n types.Notification) {
	s.seq++
	if len(s.inflight) == 0 {
		return
	}
	s.mutations = append(s.mutations, mutation{seq: s.seq, kind: kind, id: id, notification: n})
}

// ApplyLive prepends n unless a notification with the same id is present.
func (s *NotificationStore) ApplyLive(n types.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(n.ID) >= 0 {
		return false
	}
	s.items = append([]types.Notification{n}, s.items...)
	s.recordLocked(mutationInsert, n.ID, n)
	return true
}

// MarkAsRead marks id as read once the backend confirms it.
func (s *NotificationStore) MarkAsRead(ctx context.Context, token, id string) error {
	if id == "" {
		return apperrors.ValidationFailed("notification id is required", "")
	}
	if err := s.api.MarkAsRead(ctx, token, id); err != nil {
		s.log.Warnw("Failed to mark notification as read", "notificationID", id, "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		s.items[i].IsRead = true
	}
	s.recordLocked(mutationRead, id, types.Notification{})
	return nil
}

// DeleteNotification removes id once the backend confirms the delete.
func (s *NotificationStore) DeleteNotification(ctx context.Context, token, id string) error {
	if id == "" {
		return apperrors.ValidationFailed("notification id is required", "")
	}
	if err := s.api.DeleteNotification(ctx, token, id); err != nil {
		s.log.Warnw("Failed to delete notification", "notificationID", id, "error", err)
		return err
	}

	s.Remove(id)
	return nil
}

// Remove drops id locally and reports whether it was present. Snapshots in
// flight will not bring it back.
func (s *NotificationStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recordLocked(mutationRemove, id, types.Notification{})
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return true
}

// Reset empties the collection and invalidates snapshots in flight. Used when
// the signed-in identity changes.
func (s *NotificationStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.generation++
	s.applied = false
	s.appliedAt = 0
	s.mutations = nil
}

// List returns a copy of the collection, newest first.
func (s *NotificationStore) List() []types.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

// Get returns the notification with id.
func (s *NotificationStore) Get(id string) (types.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], true
	}
	return types.Notification{}, false
}

// Len returns the number of notifications held.
func (s *NotificationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// UnreadCount is derived from the collection on every call.
func (s *NotificationStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// Loading reports whether a snapshot fetch is in flight.
func (s *NotificationStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight) > 0
}

// ServerUnreadCount asks the backend for its unread count.
func (s *NotificationStore) ServerUnreadCount(ctx context.Context, token string) (int, error) {
	return s.api.UnreadCount(ctx, token)
}

func (s *NotificationStore) listLocked() []types.Notification {
	out := make([]types.Notification, len(s.items))
	copy(out, s.items)
	return out
}

func (s *NotificationStore) indexLocked(id string) int {
	for i, n := range s.items {
		if n.ID == id {
			return i
		}
	}
	return -1
}
