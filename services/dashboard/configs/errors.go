package configs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// formatConfigErrors logs each failing key and folds them into one error naming the APP_* variables.
func formatConfigErrors(logger *zap.Logger, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	keys := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := "APP_" + envKey(fe.StructField())
		logger.Error("invalid_config", zap.String("key", key), zap.String("rule", fe.Tag()), zap.Any("value", fe.Value()))
		keys = append(keys, fmt.Sprintf("%s (%s)", key, fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(keys, ", "))
}

var envKeys = map[string]string{
	"Port":                     "PORT",
	"ScoringServiceAddr":       "SCORING_SERVICE_ADDR",
	"PredictTimeout":           "PREDICT_TIMEOUT",
	"InsightsTimeout":          "INSIGHTS_TIMEOUT",
	"MlRateLimitPerSec":        "ML_RATE_LIMIT_PER_SEC",
	"MlRequestBurst":           "ML_REQUEST_BURST",
	"MlRequestMaxThrottleWait": "ML_REQUEST_MAX_THROTTLE_WAIT",
}

func envKey(field string) string {
	if k, ok := envKeys[field]; ok {
		return k
	}
	return strings.ToUpper(field)
}
