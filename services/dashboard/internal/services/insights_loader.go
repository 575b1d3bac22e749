package services

import (
	"context"
	"sync"
	"time"

	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/utils"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/views"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/internal/derived"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/internal/observability"
	"go.uber.org/zap"
)

const DefaultInsightsTimeout = 10 * time.Second

// InsightsSummary is the loader state together with the snapshot and its derived figures.
// Snapshot and Metrics are only set once the snapshot has loaded.
type InsightsSummary struct {
	Status   pkg.InsightsState      `json:"status"`
	Snapshot *views.InsightsSnapshot `json:"snapshot,omitempty"`
	Metrics  *derived.Summary        `json:"metrics,omitempty"`
}

// InsightsLoader fetches the insights snapshot at most once per session.
type InsightsLoader interface {
	// Activate starts the one and only fetch. Further calls do nothing.
	Activate(ctx context.Context)
	State() pkg.InsightsState
	Snapshot() (views.InsightsSnapshot, bool)
	Summary() InsightsSummary
	// Wait blocks until the loader is loaded or unavailable, or ctx ends.
	Wait(ctx context.Context) (pkg.InsightsState, error)
}

// InsightsLoaderConfig holds configuration and dependencies for the insights loader.
type InsightsLoaderConfig struct {
	Logger    *zap.Logger
	Transport ScoringTransport
	Timeout   time.Duration // defaults to DefaultInsightsTimeout
}

type insightsLoader struct {
	logger    *zap.Logger
	transport ScoringTransport
	timeout   time.Duration

	mu       sync.RWMutex
	state    pkg.InsightsState
	snapshot views.InsightsSnapshot
	done     chan struct{} // closed on reaching a terminal state
}

// NewInsightsLoader creates an inactive loader.
func NewInsightsLoader(cfg InsightsLoaderConfig) InsightsLoader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultInsightsTimeout
	}
	return &insightsLoader{
		logger:    cfg.Logger,
		transport: cfg.Transport,
		timeout:   timeout,
		state:     pkg.InsightsInactive,
		done:      make(chan struct{}),
	}
}

func (l *insightsLoader) Activate(ctx context.Context) {
	l.mu.Lock()
	if l.state != pkg.InsightsInactive {
		l.mu.Unlock()
		return
	}
	l.state = pkg.InsightsLoading
	l.mu.Unlock()

	reqCtx, traceID := utils.EnsureTraceID(context.WithoutCancel(ctx))
	l.logger.Info("insights_loading", zap.String(pkg.TraceId, traceID))
	go l.load(reqCtx, traceID)
}

func (l *insightsLoader) load(ctx context.Context, traceID string) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	snapshot, err := l.transport.FetchInsights(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		// Insights are supplementary; the failure stays here and prediction is unaffected.
		l.state = pkg.InsightsUnavailable
		observability.InsightsLoads.WithLabelValues(string(pkg.InsightsUnavailable)).Inc()
		l.logger.Error("insights_unavailable", zap.String(pkg.TraceId, traceID), zap.Error(err))
	} else {
		l.snapshot = snapshot
		l.state = pkg.InsightsLoaded
		observability.InsightsLoads.WithLabelValues(string(pkg.InsightsLoaded)).Inc()
		l.logger.Info("insights_loaded", zap.String(pkg.TraceId, traceID))
	}
	close(l.done)
}

func (l *insightsLoader) State() pkg.InsightsState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *insightsLoader) Snapshot() (views.InsightsSnapshot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state != pkg.InsightsLoaded {
		return views.InsightsSnapshot{}, false
	}
	return l.snapshot, true
}

// Summary computes derived figures only for a loaded snapshot.
func (l *insightsLoader) Summary() InsightsSummary {
	snapshot, ok := l.Snapshot()
	if !ok {
		return InsightsSummary{Status: l.State()}
	}
	metrics := derived.Compute(snapshot)
	return InsightsSummary{Status: pkg.InsightsLoaded, Snapshot: &snapshot, Metrics: &metrics}
}

func (l *insightsLoader) Wait(ctx context.Context) (pkg.InsightsState, error) {
	select {
	case <-l.done:
		return l.State(), nil
	case <-ctx.Done():
		return l.State(), ctx.Err()
	}
}
