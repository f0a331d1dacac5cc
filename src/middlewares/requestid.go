package middlewares

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID tags every request with an id and writes one access-log line with
// the outcome and latency.
func RequestID(ctx *gin.Context) {
	rid := ctx.GetHeader("X-Request-Id")
	if rid == "" {
		rid = uuid.New().String()
	}
	ctx.Set("request_id", rid)
	ctx.Header("X-Request-Id", rid)

	start := time.Now()
	ctx.Next()
	log.Printf("[%s] %s %s -> %d (%s)\n", rid, ctx.Request.Method, ctx.Request.URL.Path, ctx.Writer.Status(), time.Since(start))
}
