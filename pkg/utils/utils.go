package utils

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
	"github.com/spf13/viper"
)

type traceKey struct{}

// IsEmpty checks if a string is empty or only whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

func GetTraceID(c *gin.Context) (string, error) {
	traceID := c.GetString(pkg.TraceId)
	if IsEmpty(traceID) {
		return "", errors.New("trace id is empty")
	}
	return traceID, nil
}

// WithTraceID stores a trace id on ctx for outbound calls.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

// TraceIDFrom returns the trace id stored on ctx, or a fresh one.
func TraceIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(traceKey{}).(string); ok && !IsEmpty(v) {
		return v
	}
	return uuid.NewString()
}

// EnsureTraceID returns ctx carrying a trace id, generating one when absent.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if v, ok := ctx.Value(traceKey{}).(string); ok && !IsEmpty(v) {
		return ctx, v
	}
	traceID := uuid.NewString()
	return WithTraceID(ctx, traceID), traceID
}

// ParseStructEnv binds env vars to struct fields using a mapstructure tag
func ParseStructEnv(cfg interface{}) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		if err := viper.BindEnv(tag); err != nil {
			return err
		}
	}
	return viper.Unmarshal(cfg)
}
