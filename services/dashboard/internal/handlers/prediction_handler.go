package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/common"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/utils"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/views"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/internal/services"
	"go.uber.org/zap"
)

type PredictionHandler struct {
	logger     *zap.Logger
	controller services.PredictionController
}

func NewPredictionHandler(logger *zap.Logger, controller services.PredictionController) *PredictionHandler {
	return &PredictionHandler{logger: logger, controller: controller}
}

// RegisterRoutes registers prediction routes on the provided group.
func (h *PredictionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/prediction", h.GetPrediction)
	r.POST("/prediction", h.SubmitPrediction)
	r.DELETE("/prediction", h.ResetPrediction)
}

// predictionRequest accepts amount and time either as JSON numbers or as the raw text of a form field.
type predictionRequest struct {
	Amount json.RawMessage `json:"amount"`
	Time   json.RawMessage `json:"time"`
}

func (h *PredictionHandler) GetPrediction(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)
	c.JSON(http.StatusOK, common.APIResponse{TraceID: traceID, Data: h.controller.View()})
}

func (h *PredictionHandler) SubmitPrediction(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}

	var req predictionRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidInputCode.Code,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	input := views.TransactionInput{Amount: rawField(req.Amount), Time: rawField(req.Time)}
	if err = h.controller.Submit(c.Request.Context(), input); err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}

	c.JSON(http.StatusAccepted, common.APIResponse{TraceID: traceID, Data: h.controller.View()})
}

func (h *PredictionHandler) ResetPrediction(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)
	h.controller.Reset()
	c.JSON(http.StatusOK, common.APIResponse{TraceID: traceID, Data: h.controller.View()})
}

// rawField turns a JSON string or number into the text a user would have typed; null counts as absent.
func rawField(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	return string(raw)
}
