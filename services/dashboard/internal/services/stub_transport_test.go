package services

import (
	"context"
	"sync"

	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/views"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/dtos"
)

// stubTransport counts calls and delegates to the configured funcs.
type stubTransport struct {
	mu            sync.Mutex
	predictCalls  int
	insightsCalls int
	lastTx        views.Transaction

	predict  func(ctx context.Context, tx views.Transaction) (views.PredictionResult, error)
	insights func(ctx context.Context) (views.InsightsSnapshot, error)
}

func (s *stubTransport) Predict(ctx context.Context, tx views.Transaction) (views.PredictionResult, error) {
	s.mu.Lock()
	s.predictCalls++
	s.lastTx = tx
	s.mu.Unlock()
	return s.predict(ctx, tx)
}

func (s *stubTransport) FetchInsights(ctx context.Context) (views.InsightsSnapshot, error) {
	s.mu.Lock()
	s.insightsCalls++
	s.mu.Unlock()
	return s.insights(ctx)
}

func (s *stubTransport) Status(context.Context) (dtos.StatusResponse, error) {
	return dtos.StatusResponse{Status: "Fraud Detection API Running"}, nil
}

func (s *stubTransport) predictCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.predictCalls
}

func (s *stubTransport) insightsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insightsCalls
}

func verdict(label string, confidence float64) func(context.Context, views.Transaction) (views.PredictionResult, error) {
	return func(context.Context, views.Transaction) (views.PredictionResult, error) {
		return views.PredictionResult{Label: pkg.Verdict(label), ConfidencePercent: confidence}, nil
	}
}
