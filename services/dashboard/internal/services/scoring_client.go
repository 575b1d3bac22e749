package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/utils"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/views"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/dtos"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/internal/observability"
	"go.uber.org/zap"
)

const (
	opPredict       = "predict"
	opFetchInsights = "fetch_insights"
	opStatus        = "status"

	maxResponseBytes = 1 << 20
)

// ScoringTransport is the contract with the remote fraud scoring service.
// Every failure it returns is a *pkg.TransportError.
type ScoringTransport interface {
	Predict(ctx context.Context, tx views.Transaction) (views.PredictionResult, error)
	FetchInsights(ctx context.Context) (views.InsightsSnapshot, error)
	Status(ctx context.Context) (dtos.StatusResponse, error)
}

// ScoringClientConfig holds configuration and dependencies for the scoring service client.
type ScoringClientConfig struct {
	Logger     *zap.Logger
	BaseURL    string
	HTTPClient *http.Client  // defaults to utils.NewHTTPClient()
	Throttle   *pkg.Throttle // nil means unlimited
}

// NewScoringClient creates a ScoringTransport talking JSON over HTTP.
func NewScoringClient(cfg ScoringClientConfig) ScoringTransport {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = utils.NewHTTPClient()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &cfg
}

// Predict posts the transaction to /predict and validates the verdict.
func (s *ScoringClientConfig) Predict(ctx context.Context, tx views.Transaction) (views.PredictionResult, error) {
	ctx, _ = utils.EnsureTraceID(ctx)
	var out dtos.PredictResponse
	body := dtos.PredictRequest{Amount: tx.Amount, Time: tx.Time}
	if err := s.do(ctx, opPredict, http.MethodPost, "/predict", body, &out); err != nil {
		return views.PredictionResult{}, err
	}

	if err := views.ValidateStruct(out); err != nil {
		return views.PredictionResult{}, s.fail(ctx, opPredict, &pkg.TransportError{
			Op: opPredict, Kind: pkg.TransportDecode, Cause: err,
		})
	}
	return views.PredictionResult{Label: pkg.Verdict(out.Prediction), ConfidencePercent: *out.Confidence}, nil
}

// FetchInsights reads /data-insights and rejects documents missing a section.
func (s *ScoringClientConfig) FetchInsights(ctx context.Context) (views.InsightsSnapshot, error) {
	ctx, _ = utils.EnsureTraceID(ctx)
	var out views.InsightsSnapshot
	if err := s.do(ctx, opFetchInsights, http.MethodGet, "/data-insights", nil, &out); err != nil {
		return views.InsightsSnapshot{}, err
	}
	if err := out.Validate(); err != nil {
		return views.InsightsSnapshot{}, s.fail(ctx, opFetchInsights, &pkg.TransportError{
			Op: opFetchInsights, Kind: pkg.TransportDecode, Cause: err,
		})
	}
	return out, nil
}

// Status probes the service root.
func (s *ScoringClientConfig) Status(ctx context.Context) (dtos.StatusResponse, error) {
	ctx, _ = utils.EnsureTraceID(ctx)
	var out dtos.StatusResponse
	err := s.do(ctx, opStatus, http.MethodGet, "/", nil, &out)
	return out, err
}

func (s *ScoringClientConfig) do(ctx context.Context, op, method, path string, in, out any) error {
	if err := s.Throttle.Wait(ctx); err != nil {
		kind := pkg.TransportThrottled
		if errors.Is(err, context.DeadlineExceeded) {
			kind = pkg.TransportTimeout
		}
		return s.fail(ctx, op, &pkg.TransportError{Op: op, Kind: kind, Cause: err})
	}

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return s.fail(ctx, op, &pkg.TransportError{Op: op, Kind: pkg.TransportDecode, Cause: err})
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.BaseURL+path, reader)
	if err != nil {
		return s.fail(ctx, op, &pkg.TransportError{Op: op, Kind: pkg.TransportNetwork, Cause: err})
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(pkg.HeaderTraceId, utils.TraceIDFrom(ctx))

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return s.fail(ctx, op, &pkg.TransportError{Op: op, Kind: classify(err), Cause: err})
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxResponseBytes)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(body, 512))
		return s.fail(ctx, op, &pkg.TransportError{
			Op: op, Kind: pkg.TransportStatus, StatusCode: resp.StatusCode,
			Cause: fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(snippet))),
		})
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		kind := pkg.TransportDecode
		if ctx.Err() != nil {
			kind = classify(ctx.Err())
		}
		return s.fail(ctx, op, &pkg.TransportError{Op: op, Kind: kind, StatusCode: resp.StatusCode, Cause: err})
	}
	observability.ScoringRequests.WithLabelValues(op, "ok").Inc()
	return nil
}

// fail logs the transport detail and counts it; callers only ever surface a generic message.
func (s *ScoringClientConfig) fail(ctx context.Context, op string, err *pkg.TransportError) error {
	observability.ScoringRequests.WithLabelValues(op, string(err.Kind)).Inc()
	s.Logger.Error("scoring_request_failed",
		zap.String(pkg.TraceId, utils.TraceIDFrom(ctx)),
		zap.String("op", op),
		zap.String("kind", string(err.Kind)),
		zap.Int("status", err.StatusCode),
		zap.Error(err.Cause),
	)
	return err
}

func classify(err error) pkg.TransportKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return pkg.TransportTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return pkg.TransportTimeout
	}
	return pkg.TransportNetwork
}
