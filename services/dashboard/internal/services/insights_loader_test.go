package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/views"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/internal/derived"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testSnapshot() views.InsightsSnapshot {
	return views.InsightsSnapshot{
		Overview:          &views.Overview{TotalTransactions: 1000, FraudCount: 10, LegitimateCount: 990, FraudRate: 1},
		AmountStats:       &views.AmountStats{AverageTransaction: 101, AvgFraudAmount: 200, AvgLegitAmount: 100},
		TimePatterns:      &views.TimePatterns{AverageTime: 7200},
		FraudDistribution: &views.FraudDistribution{LowAmount: 3, MediumAmount: 5, HighAmount: 2},
	}
}

func newLoader(transport ScoringTransport, timeout time.Duration) InsightsLoader {
	return NewInsightsLoader(InsightsLoaderConfig{Logger: zap.NewNop(), Transport: transport, Timeout: timeout})
}

func waitLoader(t *testing.T, l InsightsLoader) pkg.InsightsState {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	state, err := l.Wait(ctx)
	require.NoError(t, err)
	return state
}

func TestActivate_IsIdempotent(t *testing.T) {
	transport := &stubTransport{insights: func(context.Context) (views.InsightsSnapshot, error) {
		return testSnapshot(), nil
	}}
	l := newLoader(transport, time.Second)
	assert.Equal(t, pkg.InsightsInactive, l.State())

	l.Activate(context.Background())
	l.Activate(context.Background())
	assert.Equal(t, pkg.InsightsLoaded, waitLoader(t, l))

	l.Activate(context.Background())
	assert.Equal(t, 1, transport.insightsCount())
}

func TestActivate_ConcurrentCallsFetchOnce(t *testing.T) {
	release := make(chan struct{})
	transport := &stubTransport{insights: func(context.Context) (views.InsightsSnapshot, error) {
		<-release
		return testSnapshot(), nil
	}}
	l := newLoader(transport, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Activate(context.Background())
		}()
	}
	wg.Wait()
	assert.Equal(t, pkg.InsightsLoading, l.State())

	close(release)
	waitLoader(t, l)
	assert.Equal(t, 1, transport.insightsCount())
}

func TestActivate_FailureMakesInsightsUnavailable(t *testing.T) {
	transport := &stubTransport{insights: func(context.Context) (views.InsightsSnapshot, error) {
		return views.InsightsSnapshot{}, &pkg.TransportError{Op: "fetch_insights", Kind: pkg.TransportNetwork, Cause: errors.New("connection refused")}
	}}
	l := newLoader(transport, time.Second)

	l.Activate(context.Background())

	assert.Equal(t, pkg.InsightsUnavailable, waitLoader(t, l))
	_, ok := l.Snapshot()
	assert.False(t, ok)
	summary := l.Summary()
	assert.Equal(t, pkg.InsightsUnavailable, summary.Status)
	assert.Nil(t, summary.Snapshot)
	assert.Nil(t, summary.Metrics, "derived metrics are never computed for an unavailable snapshot")

	l.Activate(context.Background())
	assert.Equal(t, 1, transport.insightsCount(), "unavailable is terminal, no retry")
}

func TestActivate_TimeoutMakesInsightsUnavailable(t *testing.T) {
	transport := &stubTransport{insights: func(ctx context.Context) (views.InsightsSnapshot, error) {
		<-ctx.Done()
		return views.InsightsSnapshot{}, &pkg.TransportError{Op: "fetch_insights", Kind: pkg.TransportTimeout, Cause: ctx.Err()}
	}}
	l := newLoader(transport, 20*time.Millisecond)

	l.Activate(context.Background())

	assert.Equal(t, pkg.InsightsUnavailable, waitLoader(t, l))
}

func TestSummary_LoadedCarriesDerivedFigures(t *testing.T) {
	transport := &stubTransport{insights: func(context.Context) (views.InsightsSnapshot, error) {
		return testSnapshot(), nil
	}}
	l := newLoader(transport, time.Second)
	l.Activate(context.Background())
	waitLoader(t, l)

	summary := l.Summary()

	assert.Equal(t, pkg.InsightsLoaded, summary.Status)
	require.NotNil(t, summary.Snapshot)
	require.NotNil(t, summary.Metrics)
	assert.Equal(t, int64(1000), summary.Snapshot.Overview.TotalTransactions)
	assert.Equal(t, derived.Whole(200), summary.Metrics.FraudAmountPremiumPercent)
	assert.Equal(t, derived.Whole(2), summary.Metrics.AverageTimeHours)
	assert.Equal(t, derived.Whole(30), summary.Metrics.LowAmountFraudSharePercent)
}

func TestLoaderAndControllerAreIndependent(t *testing.T) {
	transport := &stubTransport{
		insights: func(context.Context) (views.InsightsSnapshot, error) {
			return views.InsightsSnapshot{}, errors.New("insights down")
		},
		predict: verdict("Legitimate", 88),
	}
	l := newLoader(transport, time.Second)
	c := newController(t, transport, time.Second)

	l.Activate(context.Background())
	require.NoError(t, c.Submit(context.Background(), views.TransactionInput{Amount: "5", Time: "6"}))

	assert.Equal(t, pkg.InsightsUnavailable, waitLoader(t, l))
	assert.Equal(t, pkg.PredictionSucceeded, waitSettled(t, c).State)
}
