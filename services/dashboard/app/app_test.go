package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/views"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/dtos"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeTransport answers predictions with a fixed verdict once release is closed.
type fakeTransport struct {
	release   chan struct{}
	statusErr error
}

func (f *fakeTransport) Predict(ctx context.Context, _ views.Transaction) (views.PredictionResult, error) {
	select {
	case <-f.release:
		return views.PredictionResult{Label: pkg.VerdictFraud, ConfidencePercent: 92.4}, nil
	case <-ctx.Done():
		return views.PredictionResult{}, ctx.Err()
	}
}

func (f *fakeTransport) FetchInsights(context.Context) (views.InsightsSnapshot, error) {
	return views.InsightsSnapshot{
		Overview:          &views.Overview{TotalTransactions: 100, FraudCount: 4, LegitimateCount: 96, FraudRate: 4},
		AmountStats:       &views.AmountStats{AvgFraudAmount: 150, AvgLegitAmount: 100},
		TimePatterns:      &views.TimePatterns{AverageTime: 5400, FraudByHour: map[string]int64{"3": 4}},
		FraudDistribution: &views.FraudDistribution{LowAmount: 1, MediumAmount: 1, HighAmount: 2},
	}, nil
}

func (f *fakeTransport) Status(context.Context) (dtos.StatusResponse, error) {
	if f.statusErr != nil {
		return dtos.StatusResponse{}, f.statusErr
	}
	return dtos.StatusResponse{Status: "Fraud Detection API Running"}, nil
}

func newTestRouter(t *testing.T, transport *fakeTransport) (*gin.Engine, Components) {
	t.Helper()
	comps := Components{
		Transport: transport,
		Prediction: services.NewPredictionController(services.PredictionControllerConfig{
			Logger: zap.NewNop(), Transport: transport, Timeout: time.Second,
		}),
		Insights: services.NewInsightsLoader(services.InsightsLoaderConfig{
			Logger: zap.NewNop(), Transport: transport, Timeout: time.Second,
		}),
	}
	return NewRouter(zap.NewNop(), comps), comps
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	TraceID string          `json:"traceId"`
	Data    json.RawMessage `json:"data"`
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func TestPredictionRoutes_Lifecycle(t *testing.T) {
	transport := &fakeTransport{release: make(chan struct{})}
	r, comps := newTestRouter(t, transport)

	w := serve(r, http.MethodPost, "/api/v1/prediction", `{"amount": "523.10", "time": 40000}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.NotEmpty(t, w.Header().Get(pkg.HeaderTraceId))
	var view services.PredictionView
	decodeData(t, w, &view)
	assert.Equal(t, pkg.PredictionSubmitting, view.State)

	w = serve(r, http.MethodPost, "/api/v1/prediction", `{"amount": 1, "time": 2}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), pkg.ErrInFlightCode.Code)

	close(transport.release)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := comps.Prediction.Wait(ctx)
	require.NoError(t, err)

	w = serve(r, http.MethodGet, "/api/v1/prediction", "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &view)
	assert.Equal(t, pkg.PredictionSucceeded, view.State)
	require.NotNil(t, view.Result)
	assert.Equal(t, pkg.VerdictFraud, view.Result.Label)
	assert.Equal(t, 92.4, view.Result.ConfidencePercent)

	w = serve(r, http.MethodDelete, "/api/v1/prediction", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"result"`)
	var reset services.PredictionView
	decodeData(t, w, &reset)
	assert.Equal(t, pkg.PredictionIdle, reset.State)
	assert.Nil(t, reset.Result)
}

func TestSubmitPrediction_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing time", `{"amount": "10"}`, "please enter transaction time"},
		{"not a number", `{"amount": "ten", "time": "5"}`, "transaction amount must be a valid number"},
		{"malformed body", `{"amount":`, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(t, &fakeTransport{release: make(chan struct{})})

			w := serve(r, http.MethodPost, "/api/v1/prediction", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp pkg.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, pkg.ErrInvalidInputCode.Code, resp.Code)
			assert.Contains(t, resp.Message, tt.want)
		})
	}
}

func TestInsightsRoute(t *testing.T) {
	r, comps := newTestRouter(t, &fakeTransport{})

	w := serve(r, http.MethodGet, "/api/v1/insights", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"inactive"`)

	comps.Insights.Activate(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := comps.Insights.Wait(ctx)
	require.NoError(t, err)

	w = serve(r, http.MethodGet, "/api/v1/insights", "")
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Status  pkg.InsightsState `json:"status"`
		Metrics map[string]*int64 `json:"metrics"`
	}
	decodeData(t, w, &summary)
	assert.Equal(t, pkg.InsightsLoaded, summary.Status)
	require.NotNil(t, summary.Metrics["fraudAmountPremiumPercent"])
	assert.Equal(t, int64(150), *summary.Metrics["fraudAmountPremiumPercent"])
	assert.Equal(t, int64(2), *summary.Metrics["averageTimeHours"])
	assert.Equal(t, int64(50), *summary.Metrics["highAmountFraudSharePercent"])
	assert.Equal(t, int64(3), *summary.Metrics["peakFraudHour"])
}

func TestBaseRoutes(t *testing.T) {
	r, _ := newTestRouter(t, &fakeTransport{})
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/metrics", "").Code)

	down, _ := newTestRouter(t, &fakeTransport{statusErr: errors.New("connection refused")})
	w := serve(down, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), pkg.MsgServiceUnavailable)
}
