package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/utils"
)

// TraceID returns Gin middleware to handle trace IDs for observability.
// The id is also placed on the request context so calls to the scoring service carry it.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.Request.Header.Get(pkg.HeaderTraceId)
		if utils.IsEmpty(traceID) {
			traceID = uuid.New().String()
		}
		c.Set(pkg.TraceId, traceID)
		c.Request = c.Request.WithContext(utils.WithTraceID(c.Request.Context(), traceID))
		c.Writer.Header().Set(pkg.HeaderTraceId, traceID)
		c.Next()
	}
}
