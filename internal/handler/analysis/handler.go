package analysis

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spaolacci/murmur3"

	"github.com/getaround-ml/pricing-inference/internal/delay"
	"github.com/getaround-ml/pricing-inference/pkg/inmemorycache"
	"github.com/getaround-ml/pricing-inference/pkg/metric"
)

// Handler serves the delay-analysis endpoints over the rentals dataset. The
// dataset is immutable for the process lifetime, so computed reports are
// cached by endpoint and parameters when a cache is provided.
type Handler struct {
	store *delay.Store
	cache inmemorycache.InMemoryCache
}

func NewHandler(store *delay.Store, cache inmemorycache.InMemoryCache) *Handler {
	return &Handler{store: store, cache: cache}
}

// Summary handles GET /api/v1/delay/summary.
func (h *Handler) Summary(c *gin.Context) {
	h.respond(c, "summary", func() (any, error) {
		return delay.Summarize(h.store), nil
	})
}

// Overview handles GET /api/v1/delay/overview.
func (h *Handler) Overview(c *gin.Context) {
	h.respond(c, "overview", func() (any, error) {
		return delay.Analyze(h.store), nil
	})
}

type thresholdQuery struct {
	Minutes float64 `form:"minutes"`
	Scope   string  `form:"scope,default=all"`
}

// Threshold handles GET /api/v1/delay/threshold?minutes=&scope=.
func (h *Handler) Threshold(c *gin.Context) {
	var query thresholdQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	metric.Incr(metric.DelayReportCount, metric.BuildTag(metric.NewTag(metric.TagScope, query.Scope)))

	key := fmt.Sprintf("threshold:%g:%s", query.Minutes, query.Scope)
	h.respond(c, key, func() (any, error) {
		return delay.EvaluateThreshold(h.store, query.Minutes, query.Scope)
	})
}

type sweepQuery struct {
	From  float64 `form:"from,default=0"`
	To    float64 `form:"to,default=300"`
	Step  float64 `form:"step,default=30"`
	Scope string  `form:"scope,default=all"`
}

// Sweep handles GET /api/v1/delay/threshold/sweep?from=&to=&step=&scope=.
func (h *Handler) Sweep(c *gin.Context) {
	var query sweepQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	metric.Incr(metric.DelayReportCount, metric.BuildTag(metric.NewTag(metric.TagScope, query.Scope)))

	key := fmt.Sprintf("sweep:%g:%g:%g:%s", query.From, query.To, query.Step, query.Scope)
	h.respond(c, key, func() (any, error) {
		series, err := delay.SweepThresholds(h.store, query.From, query.To, query.Step, query.Scope)
		if err != nil {
			return nil, err
		}
		return gin.H{"thresholds": series}, nil
	})
}

// respond serves the cached report when present, otherwise computes it,
// caches the rendered JSON and writes it. Compute errors are request errors
// here: the dataset itself is validated at load.
func (h *Handler) respond(c *gin.Context, key string, compute func() (any, error)) {
	cacheKey := reportCacheKey(key)
	if h.cache != nil {
		if data, err := h.cache.Get(cacheKey); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", data)
			return
		}
	}

	report, err := compute()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.cache != nil {
		if err := h.cache.Set(cacheKey, data); err != nil {
			log.Warn().Err(err).Str("report", key).Msg("Failed to cache delay report")
		}
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func reportCacheKey(key string) []byte {
	h := murmur3.New128()
	h.Write([]byte("delay_report:"))
	h.Write([]byte(key))
	hi, lo := h.Sum128()
	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[:8], hi)
	binary.LittleEndian.PutUint64(out[8:], lo)
	return out
}
