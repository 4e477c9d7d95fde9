package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns the otelgin middleware creating a server span per request
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceEnrich tags the active span with the request ID and acting user.
// Register it after Tracing and Actor so both values are populated.
func TraceEnrich() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := c.GetString(RequestIDKey); requestID != "" {
				span.SetAttributes(attribute.String("http.request_id", requestID))
			}
			if actor := GetActorName(c); actor != "" {
				span.SetAttributes(attribute.String("enduser.id", actor))
			}
		}
		c.Next()
	}
}
