// Package middleware contains shared Gin middleware used by the HTTP layer:
// request correlation, Prometheus instrumentation, rate limiting, and
// security headers. Error interception lives in the boundary package, not
// here; access logging lives at the transport layer so it can observe the
// status written by the outer supervisory boundary.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// HeaderRequestID is the HTTP header used to propagate the correlation ID.
	HeaderRequestID = "X-Request-ID"
)

// RequestID attaches (or propagates) a correlation identifier per request.
//
// If the incoming request carries X-Request-ID that value is reused,
// otherwise a new UUIDv4 is generated. The ID is written back to the
// response header and stored in the Gin context. Place this first in the
// chain so every boundary's log records can carry the ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}
