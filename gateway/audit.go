package gateway

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Syafiq-lab/library-management-be/audit"
	"github.com/Syafiq-lab/library-management-be/middleware"
)

// AuditTrail records one audit event per request after the response is
// written. Enqueueing is fire-and-forget: a slow or unavailable broker never
// delays the response.
func AuditTrail(dispatcher *audit.Dispatcher, sourceService string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if dispatcher == nil {
			return
		}
		dispatcher.Enqueue(audit.NewHTTPCallEnvelope(audit.Event{
			TraceID:    middleware.TraceIDFrom(c),
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			StatusCode: c.Writer.Status(),
			Timestamp:  time.Now().UTC(),
		}, sourceService))
	}
}
