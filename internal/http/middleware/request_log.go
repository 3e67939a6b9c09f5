package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/catalog-backend/internal/platform/ctxutil"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

// RequestLogger writes one access line per request. Route parameters
// (search term, product id, image name) are logged under their own keys.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}

		fields := accessFields(c, time.Since(start))
		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("request", fields...)
		case status == 404:
			log.Info("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

func accessFields(c *gin.Context, dur time.Duration) []interface{} {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	fields := []interface{}{
		"method", c.Request.Method,
		"route", route,
		"status", c.Writer.Status(),
		"duration_ms", dur.Milliseconds(),
		"bytes", c.Writer.Size(),
	}
	for _, p := range c.Params {
		fields = append(fields, "param_"+p.Key, p.Value)
	}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		fields = append(fields, "request_id", td.RequestID, "trace_id", td.TraceID)
	}
	if len(c.Errors) > 0 {
		fields = append(fields, "errors", c.Errors.String())
	}
	return fields
}
