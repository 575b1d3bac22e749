// Package testutil runs the dashboard in-process against a fake scoring service.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/dtos"
)

// SampleInsights is a well-formed /data-insights document.
const SampleInsights = `{
  "overview": {"total_transactions": 1000, "fraud_count": 20, "legitimate_count": 980, "fraud_rate": 2},
  "amount_stats": {"average_transaction": 50, "max_transaction": 900, "min_transaction": 1,
                   "avg_fraud_amount": 75, "avg_legit_amount": 50},
  "time_patterns": {"average_time": 36000, "top_fraud_hours": {"1": 9}, "fraud_by_hour": {}, "legit_by_hour": {}},
  "fraud_distribution": {"low_amount": 10, "medium_amount": 5, "high_amount": 5}
}`

// ScoringService is a fake of the remote scoring API. Zero status fields mean 200.
type ScoringService struct {
	*httptest.Server

	mu             sync.Mutex
	verdict        dtos.PredictResponse
	predictStatus  int
	insightsStatus int
	insightsBody   string
	hold           chan struct{}

	PredictHits  atomic.Int32
	InsightsHits atomic.Int32
	LastTraceID  atomic.Value
}

// NewScoringService starts a fake answering Legitimate at 97.5% and serving SampleInsights.
func NewScoringService(t *testing.T) *ScoringService {
	t.Helper()
	s := &ScoringService{insightsBody: SampleInsights}
	s.SetVerdict("Legitimate", 97.5)
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.status)
	mux.HandleFunc("/predict", s.predict)
	mux.HandleFunc("/data-insights", s.insights)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// SetVerdict changes the answer to later predictions.
func (s *ScoringService) SetVerdict(prediction string, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verdict = dtos.PredictResponse{Prediction: prediction, Confidence: &confidence}
}

// FailPredictions makes /predict answer with status.
func (s *ScoringService) FailPredictions(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predictStatus = status
}

// FailInsights makes /data-insights answer with status.
func (s *ScoringService) FailInsights(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insightsStatus = status
}

// HoldPredictions blocks /predict until the returned func is called or the client gives up.
func (s *ScoringService) HoldPredictions() (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.hold = ch
	s.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (s *ScoringService) status(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, dtos.StatusResponse{Status: "Fraud Detection API Running"})
}

func (s *ScoringService) predict(w http.ResponseWriter, r *http.Request) {
	s.PredictHits.Add(1)
	s.LastTraceID.Store(r.Header.Get("X-Trace-Id"))

	var req dtos.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	hold, status, verdict := s.hold, s.predictStatus, s.verdict
	s.mu.Unlock()
	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		writeJSON(w, status, map[string]string{"detail": "Prediction error"})
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

func (s *ScoringService) insights(w http.ResponseWriter, _ *http.Request) {
	s.InsightsHits.Add(1)
	s.mu.Lock()
	status, body := s.insightsStatus, s.insightsBody
	s.mu.Unlock()
	if status != 0 {
		writeJSON(w, status, map[string]string{"detail": "Data insights error"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
