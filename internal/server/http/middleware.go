package http

import (
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/getaround-ml/pricing-inference/pkg/metric"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates the caller's request id, minting one when absent. The
// id is echoed on the response so support tickets can quote it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDHeader, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

func Cors() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", requestIDHeader}
	return cors.New(corsConfig)
}

// RequestMetrics emits per-route count and latency, tagged with the matched
// route template rather than the raw path so cardinality stays bounded.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		tags := metric.BuildTag(
			metric.NewTag(metric.TagRoute, route),
			metric.NewTag(metric.TagStatus, strconv.Itoa(c.Writer.Status())),
		)
		metric.Incr(metric.HttpRequestCount, tags)
		metric.Timing(metric.HttpRequestLatency, time.Since(startTime), tags)
	}
}
