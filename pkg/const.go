package pkg

const (
	HeaderTraceId string = "X-Trace-Id"
)

const (
	TraceId string = "trace_id"
	Seq     string = "seq"
	State   string = "state"
)

// PredictionState is a state of the prediction controller.
type PredictionState string

const (
	PredictionIdle       PredictionState = "idle"
	PredictionValidating PredictionState = "validating"
	PredictionSubmitting PredictionState = "submitting"
	PredictionSucceeded  PredictionState = "succeeded"
	PredictionFailed     PredictionState = "failed"
)

// InsightsState is a state of the insights loader.
type InsightsState string

const (
	InsightsInactive    InsightsState = "inactive"
	InsightsLoading     InsightsState = "loading"
	InsightsLoaded      InsightsState = "loaded"
	InsightsUnavailable InsightsState = "unavailable"
)

// Verdict is the label returned by the scoring service.
type Verdict string

const (
	VerdictFraud      Verdict = "Fraud"
	VerdictLegitimate Verdict = "Legitimate"
)

// User facing messages. Transport details never reach the end user.
const (
	MsgServiceUnavailable = "Unable to connect to fraud detection service. Please ensure backend is running."
	MsgServiceTimeout     = "Fraud detection service did not respond in time. Please try again."
)
