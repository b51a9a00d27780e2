package types

type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "UP"
	HealthStatusDown     HealthStatus = "DOWN"
	HealthStatusDegraded HealthStatus = "DEGRADED"
)

type HealthComponent struct {
	Status  HealthStatus `json:"status"`
	Details string       `json:"details,omitempty"`
}

// LiveHealth describes the live channel.
type LiveHealth struct {
	State     string `json:"state"`
	Connected bool   `json:"connected"`
	Attempts  int    `json:"attempts"`
}

type HealthCheck struct {
	Status        HealthStatus               `json:"status"`
	Components    map[string]HealthComponent `json:"components"`
	Live          LiveHealth                 `json:"live"`
	Notifications int                        `json:"notifications"`
	Unread        int                        `json:"unread"`
	Version       string                     `json:"version"`
	Timestamp     string                     `json:"timestamp"`
	Uptime        string                     `json:"uptime"`
}
