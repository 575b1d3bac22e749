package pkg

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var ExposeErrorDetails = false

func init() {
	if gin.DebugMode == gin.Mode() || gin.TestMode == gin.Mode() {
		ExposeErrorDetails = true
	}
}

// Reusable errors
var (
	ErrSubmissionInFlight  = errors.New("prediction already in flight")
	ErrInsightsUnavailable = errors.New("insights unavailable")
	ErrRateLimitExceeded   = errors.New("rate limit exceeded")
)

// ErrorCode defines a standardized error code
type ErrorCode struct {
	Code    string
	Status  int
	Message string // default message
}

var (
	// Generic app
	ErrInvalidInputCode = ErrorCode{Code: "APP_INVALID_INPUT", Status: http.StatusBadRequest, Message: "invalid input"}
	ErrServerCode       = ErrorCode{Code: "APP_INTERNAL", Status: http.StatusInternalServerError, Message: "internal server error"}

	// Prediction / insights lifecycle
	ErrInFlightCode             = ErrorCode{Code: "PREDICTION_IN_FLIGHT", Status: http.StatusConflict, Message: "a prediction is already in progress"}
	ErrInsightsUnavailableCode  = ErrorCode{Code: "INSIGHTS_UNAVAILABLE", Status: http.StatusServiceUnavailable, Message: "insights are unavailable"}
	ErrTransportUnavailableCode = ErrorCode{Code: "TRANSPORT_UNAVAILABLE", Status: http.StatusServiceUnavailable, Message: MsgServiceUnavailable}
	ErrTransportTimeoutCode     = ErrorCode{Code: "TRANSPORT_TIMEOUT", Status: http.StatusGatewayTimeout, Message: MsgServiceTimeout}
)

type AppError struct {
	Code    ErrorCode
	Message string // public-facing message
	Cause   error  // internal cause (wrapped)
}

func (e AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}
func (e AppError) Unwrap() error { return e.Cause }

func NewAppError(code ErrorCode, msg string, cause error) error {
	return AppError{Code: code, Message: msg, Cause: cause}
}

// ValidationError reports user input rejected before any request is sent.
type ValidationError struct {
	Missing []string // fields left empty
	Invalid []string // fields present but not finite numbers
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "please enter transaction "+strings.Join(e.Missing, " and "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "transaction "+strings.Join(e.Invalid, " and ")+" must be a valid number")
	}
	if len(parts) == 0 {
		return "invalid transaction input"
	}
	return strings.Join(parts, "; ")
}

// TransportKind classifies a transport failure.
type TransportKind string

const (
	TransportNetwork   TransportKind = "network"
	TransportStatus    TransportKind = "status"
	TransportDecode    TransportKind = "decode"
	TransportTimeout   TransportKind = "timeout"
	TransportThrottled TransportKind = "throttled"
)

// TransportError is any failure talking to the scoring service.
type TransportError struct {
	Op         string // predict, fetch_insights, status
	Kind       TransportKind
	StatusCode int
	Cause      error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("scoring %s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (http %d)", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Timeout reports whether the failure was a deadline expiry.
func (e *TransportError) Timeout() bool { return e.Kind == TransportTimeout }

// ToAppError maps domain errors onto an AppError carrying the public message.
func ToAppError(err error) AppError {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return AppError{Code: ErrInvalidInputCode, Message: valErr.Error(), Cause: err}
	}
	var trErr *TransportError
	if errors.As(err, &trErr) {
		if trErr.Timeout() {
			return AppError{Code: ErrTransportTimeoutCode, Message: MsgServiceTimeout, Cause: err}
		}
		return AppError{Code: ErrTransportUnavailableCode, Message: MsgServiceUnavailable, Cause: err}
	}
	switch {
	case errors.Is(err, ErrSubmissionInFlight):
		return AppError{Code: ErrInFlightCode, Message: ErrInFlightCode.Message, Cause: err}
	case errors.Is(err, ErrInsightsUnavailable):
		return AppError{Code: ErrInsightsUnavailableCode, Message: ErrInsightsUnavailableCode.Message, Cause: err}
	}
	return AppError{Code: ErrServerCode, Message: ErrServerCode.Message, Cause: err}
}

// ErrorResponse defines the standardized error response format
type ErrorResponse struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ToErrorResponse converts an error into an ErrorResponse, logging details and optionally exposing error messages.
// Errors outside the taxonomy become a generic 500.
func ToErrorResponse(logger *zap.Logger, traceID string, err error) ErrorResponse {
	appErr := ToAppError(err)
	resp := ErrorResponse{
		Status:  appErr.Code.Status,
		Code:    appErr.Code.Code,
		Message: appErr.Message,
	}
	if appErr.Code.Status >= http.StatusInternalServerError {
		logger.Error("application error", zap.String(TraceId, traceID), zap.Error(err))
	} else {
		logger.Warn("request rejected", zap.String(TraceId, traceID), zap.Error(err))
	}
	if ExposeErrorDetails {
		resp.Details = err.Error()
	}
	return resp
}
