package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/poopay/poopay-realtime/logger"
	"github.com/poopay/poopay-realtime/services"
	"github.com/poopay/poopay-realtime/types"
	"go.uber.org/zap"
)

// HealthHandler reports process and live channel health.
type HealthHandler struct {
	healthService *services.HealthService
	log           *zap.SugaredLogger
}

func NewHealthHandler(healthService *services.HealthService) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
		log:           logger.GetLogger().Named("HealthHandler"),
	}
}

// LivenessCheck answers as long as the process serves HTTP.
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/liveness [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": string(types.HealthStatusUp)})
}

// ReadinessCheck fails while the live channel is down.
// @Summary Readiness check
// @Description Answers 503 while the live notification channel is down
// @Tags health
// @Produce json
// @Success 200 {object} types.HealthCheck
// @Failure 503 {object} types.HealthCheck
// @Router /health/readiness [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())

	if health.Status == types.HealthStatusDown {
		h.log.Warnw("Readiness check failed",
			"liveState", health.Live.State,
			"attempts", health.Live.Attempts)
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

// DetailedHealth reports every component, including the live channel state
// and the size of the notification collection.
// @Summary Detailed health
// @Tags health
// @Produce json
// @Success 200 {object} types.HealthCheck
// @Router /health [get]
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())
	c.JSON(http.StatusOK, health)
}
