package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/common"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/utils"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/internal/services"
	"go.uber.org/zap"
)

type InsightsHandler struct {
	logger *zap.Logger
	loader services.InsightsLoader
}

func NewInsightsHandler(logger *zap.Logger, loader services.InsightsLoader) *InsightsHandler {
	return &InsightsHandler{logger: logger, loader: loader}
}

func (h *InsightsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/insights", h.GetInsights)
}

// GetInsights always answers 200: an unavailable snapshot is a state to render, not an error.
func (h *InsightsHandler) GetInsights(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)
	c.JSON(http.StatusOK, common.APIResponse{TraceID: traceID, Data: h.loader.Summary()})
}
