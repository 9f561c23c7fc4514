package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Syafiq-lab/library-management-be/logger"
)

// TraceIDHeader is the correlation header propagated across every hop.
const TraceIDHeader = "X-Trace-Id"

// TraceID reads the correlation id from the request, generating a fresh one
// when the header is absent or blank, and echoes it on the response. The id
// is stored in the request context for log correlation.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(TraceIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Request.Header.Set(TraceIDHeader, id)
		c.Header(TraceIDHeader, id)
		c.Request = c.Request.WithContext(
			logger.ContextWithTraceID(c.Request.Context(), id),
		)
		c.Next()
	}
}

// TraceIDFrom returns the correlation id for the current request.
func TraceIDFrom(c *gin.Context) string {
	return logger.TraceIDFromContext(c.Request.Context())
}
