package websocket

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/poopay/poopay-realtime/internal/notification"
	"github.com/poopay/poopay-realtime/types"
	"go.uber.org/zap"
)

// Listener receives normalized live notifications.
type Listener func(types.Notification)

type subscription struct {
	id     string
	userID string
	fn     Listener
}

// Registry holds the listeners of one live session. Dispatch runs on the
// session's read goroutine, so listeners see events in transport order.
type Registry struct {
	mu      sync.RWMutex
	subs    []*subscription
	log     *zap.SugaredLogger
	metrics *liveMetrics
}

// NewRegistry creates an empty registry.
func NewRegistry(log *zap.SugaredLogger) *Registry {
	return &Registry{
		log:     log,
		metrics: newLiveMetrics(),
	}
}

// Add attaches fn for userID. The returned function detaches it and is safe
// to call more than once.
func (r *Registry) Add(userID string, fn Listener) func() {
	sub := &subscription{id: uuid.NewString(), userID: userID, fn: fn}

	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()
	r.metrics.activeListeners.Inc()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(sub.id) })
	}
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, sub := range r.subs {
		if sub.id == id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			r.metrics.activeListeners.Dec()
			return
		}
	}
}

// Len returns the number of attached listeners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Dispatch routes one Socket.IO event to the listeners and returns how many
// were invoked. Anything other than a well-formed new_notification is dropped.
func (r *Registry) Dispatch(event string, data json.RawMessage) int {
	if event != EventNewNotification {
		r.metrics.events.WithLabelValues("ignored").Inc()
		r.log.Debugw("Ignoring live event", "event", event)
		return 0
	}

	frame, err := DecodeFrame(data)
	if err != nil {
		r.metrics.events.WithLabelValues("malformed").Inc()
		r.log.Debugw("Dropping malformed live frame", "error", err)
		return 0
	}

	nf, ok := frame.(NewNotificationFrame)
	if !ok {
		r.metrics.events.WithLabelValues("ignored").Inc()
		r.log.Debugw("Ignoring live frame", "type", frame.FrameType())
		return 0
	}

	n, err := notification.Normalize(nf.Notification)
	if err != nil {
		r.metrics.events.WithLabelValues("malformed").Inc()
		r.log.Debugw("Dropping live notification", "error", err)
		return 0
	}

	r.mu.RLock()
	subs := make([]*subscription, len(r.subs))
	copy(subs, r.subs)
	r.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		if n.UserID != "" && sub.userID != "" && n.UserID != sub.userID {
			continue
		}
		r.invoke(sub, n)
		delivered++
	}

	r.metrics.events.WithLabelValues("delivered").Inc()
	return delivered
}

func (r *Registry) invoke(sub *subscription, n types.Notification) {
	defer func() {
		if rec := recover(); rec != nil {
			r.metrics.listenerPanics.Inc()
			r.log.Errorw("Notification listener panicked",
				"subscriptionID", sub.id,
				"notificationID", n.ID,
				"panic", rec)
		}
	}()
	sub.fn(n)
}
