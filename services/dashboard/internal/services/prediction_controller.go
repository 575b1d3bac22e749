package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/utils"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/views"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/internal/observability"
	"go.uber.org/zap"
)

const DefaultPredictTimeout = 10 * time.Second

// PredictionView is what presentation sees of the controller at one instant.
type PredictionView struct {
	State     pkg.PredictionState     `json:"state"`
	Seq       uint64                  `json:"seq"`
	Result    *views.PredictionResult `json:"result,omitempty"`
	Message   string                  `json:"message,omitempty"`
	ErrorCode string                  `json:"errorCode,omitempty"`
	Err       error                   `json:"-"`
}

// PredictionController owns the lifecycle of a single prediction.
type PredictionController interface {
	// Submit validates input and, when valid, issues exactly one request without waiting for it.
	Submit(ctx context.Context, input views.TransactionInput) error
	// Reset returns to idle from any state. A request still in flight is cancelled and its outcome dropped.
	Reset()
	View() PredictionView
	// Wait blocks until the controller is not submitting or ctx ends.
	Wait(ctx context.Context) (PredictionView, error)
}

// PredictionControllerConfig holds configuration and dependencies for the prediction controller.
type PredictionControllerConfig struct {
	Logger    *zap.Logger
	Transport ScoringTransport
	Timeout   time.Duration // defaults to DefaultPredictTimeout
	// Observers are called on every transition, in order, while the controller lock is held.
	// They must not call back into the controller.
	Observers []func(PredictionView)
}

type predictionController struct {
	logger    *zap.Logger
	transport ScoringTransport
	timeout   time.Duration
	observers []func(PredictionView)

	mu      sync.Mutex
	view    PredictionView
	seq     uint64             // id of the latest submission; responses carrying another id are stale
	cancel  context.CancelFunc // cancels the in-flight request
	settled chan struct{}      // closed when the latest submission leaves submitting
}

// NewPredictionController creates an idle controller.
func NewPredictionController(cfg PredictionControllerConfig) PredictionController {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultPredictTimeout
	}
	return &predictionController{
		logger:    cfg.Logger,
		transport: cfg.Transport,
		timeout:   timeout,
		observers: cfg.Observers,
		view:      PredictionView{State: pkg.PredictionIdle},
	}
}

func (p *predictionController) Submit(ctx context.Context, input views.TransactionInput) error {
	p.mu.Lock()
	if p.view.State == pkg.PredictionSubmitting {
		p.mu.Unlock()
		return pkg.ErrSubmissionInFlight
	}

	p.seq++
	seq := p.seq
	p.transition(PredictionView{State: pkg.PredictionValidating, Seq: seq})

	tx, err := input.Parse()
	if err != nil {
		appErr := pkg.ToAppError(err)
		p.transition(PredictionView{
			State:     pkg.PredictionFailed,
			Seq:       seq,
			Message:   appErr.Message,
			ErrorCode: appErr.Code.Code,
			Err:       err,
		})
		p.mu.Unlock()
		observability.PredictionOutcomes.WithLabelValues("validation").Inc()
		p.logger.Info("prediction_input_rejected", zap.Uint64(pkg.Seq, seq), zap.Error(err))
		return err
	}

	// The request outlives the caller's ctx (an HTTP handler returns immediately) but keeps its values.
	reqCtx, _ := utils.EnsureTraceID(context.WithoutCancel(ctx))
	reqCtx, cancel := context.WithTimeout(reqCtx, p.timeout)
	p.cancel = cancel
	p.settled = make(chan struct{})
	p.transition(PredictionView{State: pkg.PredictionSubmitting, Seq: seq})
	p.mu.Unlock()

	observability.PredictionsSubmitted.Inc()
	go p.run(reqCtx, cancel, seq, tx)
	return nil
}

type predictOutcome struct {
	result views.PredictionResult
	err    error
}

func (p *predictionController) run(ctx context.Context, cancel context.CancelFunc, seq uint64, tx views.Transaction) {
	defer cancel()
	start := time.Now()

	done := make(chan predictOutcome, 1)
	go func() {
		result, err := p.transport.Predict(ctx, tx)
		done <- predictOutcome{result: result, err: err}
	}()

	var out predictOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		// A transport that ignores ctx must not keep the controller submitting.
		kind := pkg.TransportNetwork
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = pkg.TransportTimeout
		}
		out.err = &pkg.TransportError{Op: opPredict, Kind: kind, Cause: ctx.Err()}
	}
	observability.PredictionLatency.Observe(time.Since(start).Seconds())

	if out.err != nil {
		var trErr *pkg.TransportError
		if !errors.As(out.err, &trErr) {
			out.err = &pkg.TransportError{Op: opPredict, Kind: classify(out.err), Cause: out.err}
		}
	}
	p.settle(ctx, seq, out)
}

// settle applies a completion only if it belongs to the latest submission.
func (p *predictionController) settle(ctx context.Context, seq uint64, out predictOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	traceID := utils.TraceIDFrom(ctx)
	if seq != p.seq || p.view.State != pkg.PredictionSubmitting {
		observability.StaleResponsesDiscarded.Inc()
		p.logger.Debug("stale_prediction_discarded",
			zap.String(pkg.TraceId, traceID),
			zap.Uint64(pkg.Seq, seq),
			zap.Uint64("latest_seq", p.seq),
			zap.String(pkg.State, string(p.view.State)),
		)
		return
	}
	p.cancel = nil

	if out.err != nil {
		appErr := pkg.ToAppError(out.err)
		outcome := "transport"
		if appErr.Code == pkg.ErrTransportTimeoutCode {
			outcome = "timeout"
		}
		observability.PredictionOutcomes.WithLabelValues(outcome).Inc()
		p.logger.Error("prediction_failed", zap.String(pkg.TraceId, traceID), zap.Uint64(pkg.Seq, seq), zap.Error(out.err))
		p.transition(PredictionView{
			State:     pkg.PredictionFailed,
			Seq:       seq,
			Message:   appErr.Message,
			ErrorCode: appErr.Code.Code,
			Err:       out.err,
		})
	} else {
		result := out.result
		observability.PredictionOutcomes.WithLabelValues(outcomeLabel(result.Label)).Inc()
		p.logger.Info("prediction_succeeded",
			zap.String(pkg.TraceId, traceID),
			zap.Uint64(pkg.Seq, seq),
			zap.String("label", string(result.Label)),
			zap.Float64("confidence", result.ConfidencePercent),
		)
		p.transition(PredictionView{State: pkg.PredictionSucceeded, Seq: seq, Result: &result})
	}
	close(p.settled)
}

func (p *predictionController) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.view.State == pkg.PredictionSubmitting {
		close(p.settled)
	}
	p.transition(PredictionView{State: pkg.PredictionIdle, Seq: p.seq})
}

func (p *predictionController) View() PredictionView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

func (p *predictionController) Wait(ctx context.Context) (PredictionView, error) {
	p.mu.Lock()
	if p.view.State != pkg.PredictionSubmitting {
		view := p.view
		p.mu.Unlock()
		return view, nil
	}
	settled := p.settled
	p.mu.Unlock()

	select {
	case <-settled:
		return p.View(), nil
	case <-ctx.Done():
		return p.View(), ctx.Err()
	}
}

// transition must be called with mu held.
func (p *predictionController) transition(next PredictionView) {
	p.view = next
	for _, observe := range p.observers {
		observe(next)
	}
}

func outcomeLabel(v pkg.Verdict) string {
	if v == pkg.VerdictFraud {
		return "fraud"
	}
	return "legitimate"
}
