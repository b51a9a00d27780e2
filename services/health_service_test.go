package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/poopay/poopay-realtime/internal/websocket"
	"github.com/poopay/poopay-realtime/logger"
	"github.com/poopay/poopay-realtime/types"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	os.Exit(m.Run())
}

type fakeLive struct {
	state    websocket.State
	attempts int
}

func (f fakeLive) Connected() bool         { return f.state == websocket.StateConnected }
func (f fakeLive) State() websocket.State { return f.state }
func (f fakeLive) Attempts() int          { return f.attempts }

type fakeCounter struct {
	total, unread int
	loading       bool
}

func (f fakeCounter) Len() int         { return f.total }
func (f fakeCounter) UnreadCount() int { return f.unread }
func (f fakeCounter) Loading() bool    { return f.loading }

func TestNewHealthService(t *testing.T) {
	service := NewHealthService(fakeLive{}, fakeCounter{}, "1.0.0")

	assert.NotNil(t, service)
	assert.Equal(t, "1.0.0", service.version)
	assert.NotNil(t, service.log)
	assert.True(t, time.Since(service.startTime) < time.Second)
}

func TestCheckHealth(t *testing.T) {
	testCases := []struct {
		name           string
		live           fakeLive
		expectedStatus types.HealthStatus
	}{
		{name: "connected", live: fakeLive{state: websocket.StateConnected}, expectedStatus: types.HealthStatusUp},
		{name: "reconnecting", live: fakeLive{state: websocket.StateReconnecting, attempts: 2}, expectedStatus: types.HealthStatusDegraded},
		{name: "no session", live: fakeLive{state: websocket.StateIdle}, expectedStatus: types.HealthStatusDegraded},
		{name: "exhausted", live: fakeLive{state: websocket.StateExhausted, attempts: 5}, expectedStatus: types.HealthStatusDown},
		{name: "server disconnected", live: fakeLive{state: websocket.StateDisconnected}, expectedStatus: types.HealthStatusDown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service := NewHealthService(tc.live, fakeCounter{total: 4, unread: 1}, "1.0.0")
			health := service.CheckHealth(context.Background())

			assert.Equal(t, tc.expectedStatus, health.Status)
			assert.Equal(t, string(tc.live.state), health.Live.State)
			assert.Equal(t, tc.live.attempts, health.Live.Attempts)
			assert.Equal(t, tc.live.state == websocket.StateConnected, health.Live.Connected)
			assert.Equal(t, 4, health.Notifications)
			assert.Equal(t, 1, health.Unread)
			assert.Equal(t, "1.0.0", health.Version)
			assert.NotEmpty(t, health.Timestamp)
		})
	}
}
