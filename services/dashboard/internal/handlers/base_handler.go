package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const readyProbeTimeout = 2 * time.Second

type BaseHandler struct {
	logger    *zap.Logger
	transport services.ScoringTransport
}

func NewBaseHandler(logger *zap.Logger, transport services.ScoringTransport) *BaseHandler {
	return &BaseHandler{logger: logger, transport: transport}
}

func (b *BaseHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", b.GetHealth)
	r.GET("/ready", b.GetReady)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (b *BaseHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GetReady reports whether the scoring service answers its status probe.
func (b *BaseHandler) GetReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyProbeTimeout)
	defer cancel()

	status, err := b.transport.Status(ctx)
	if err != nil {
		b.logger.Warn("scoring_service_not_ready", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"message": pkg.MsgServiceUnavailable,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"scoring": status.Status,
	})
}
