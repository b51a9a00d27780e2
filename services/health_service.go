package services

import (
	"context"
	"time"

	"github.com/poopay/poopay-realtime/internal/websocket"
	"github.com/poopay/poopay-realtime/logger"
	"github.com/poopay/poopay-realtime/types"
	"go.uber.org/zap"
)

// LiveStatus is the read side of the connection manager.
type LiveStatus interface {
	Connected() bool
	State() websocket.State
	Attempts() int
}

// NotificationCounter is the read side of the notification store.
type NotificationCounter interface {
	Len() int
	UnreadCount() int
	Loading() bool
}

type HealthService struct {
	live          LiveStatus
	notifications NotificationCounter
	version       string
	startTime     time.Time
	log           *zap.SugaredLogger
}

func NewHealthService(live LiveStatus, notifications NotificationCounter, version string) *HealthService {
	return &HealthService{
		live:          live,
		notifications: notifications,
		version:       version,
		startTime:     time.Now(),
		log:           logger.GetLogger().Named("health"),
	}
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.HealthComponent)

	liveStatus := h.checkLive()
	components["live"] = liveStatus
	components["notifications"] = h.checkNotifications()

	overallStatus := types.HealthStatusUp
	for _, component := range components {
		if component.Status == types.HealthStatusDown {
			overallStatus = types.HealthStatusDown
			break
		}
		if component.Status == types.HealthStatusDegraded {
			overallStatus = types.HealthStatusDegraded
		}
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Live: types.LiveHealth{
			State:     string(h.live.State()),
			Connected: h.live.Connected(),
			Attempts:  h.live.Attempts(),
		},
		Notifications: h.notifications.Len(),
		Unread:        h.notifications.UnreadCount(),
		Version:       h.version,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Uptime:        time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkLive() types.HealthComponent {
	state := h.live.State()
	switch state {
	case websocket.StateConnected:
		return types.HealthComponent{Status: types.HealthStatusUp}
	case websocket.StateConnecting, websocket.StateReconnecting:
		return types.HealthComponent{Status: types.HealthStatusDegraded, Details: "Live channel " + string(state)}
	case websocket.StateIdle, websocket.StateClosed:
		return types.HealthComponent{Status: types.HealthStatusDegraded, Details: "No live session"}
	default:
		h.log.Warnw("Live channel health check failed", "state", state, "attempts", h.live.Attempts())
		return types.HealthComponent{Status: types.HealthStatusDown, Details: "Live channel " + string(state)}
	}
}

func (h *HealthService) checkNotifications() types.HealthComponent {
	if h.notifications.Loading() {
		return types.HealthComponent{Status: types.HealthStatusUp, Details: "Snapshot loading"}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}
