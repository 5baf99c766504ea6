package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderXRequestID = "X-Request-ID"

// RequestID echoes the caller's X-Request-ID when it is a valid UUID and
// generates one otherwise, so every log line can be tied to a request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.NewString()
		}
		c.Set("requestId", rid)
		c.Header(HeaderXRequestID, rid)
		c.Next()
	}
}
