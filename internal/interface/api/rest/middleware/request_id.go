package middleware

import (
	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	HeaderRequestID = "X-Request-ID"
	CtxRequestID    = "requestID"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = gonanoid.Must()
		}

		c.Set(CtxRequestID, id)
		c.Header(HeaderRequestID, id)

		c.Next()
	}
}
