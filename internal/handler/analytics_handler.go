package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adminforge/backoffice-api/internal/service"
	"github.com/adminforge/backoffice-api/pkg/response"
)

// AnalyticsHandler exposes the dashboard summary endpoint.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	logger    *zap.Logger
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// Summary godoc
// @Summary Dashboard counters
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.AnalyticsSummary}
// @Router /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, fromCache, err := h.analytics.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	if fromCache {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
