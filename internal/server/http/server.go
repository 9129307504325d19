package http

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/getaround-ml/pricing-inference/internal/config"
	"github.com/getaround-ml/pricing-inference/internal/handler/analysis"
	"github.com/getaround-ml/pricing-inference/internal/handler/docs"
	"github.com/getaround-ml/pricing-inference/internal/handler/predict"
)

var (
	router *gin.Engine
	once   sync.Once
)

// Handlers carries the route handlers into Init. Analysis is nil when the
// service runs without the delay dataset; its routes are then not mounted.
type Handlers struct {
	Predict  *predict.Handler
	Docs     *docs.Handler
	Analysis *analysis.Handler
}

func Init(cfg config.Configs, handlers Handlers) {
	once.Do(func() {
		env := cfg.ApplicationEnv
		if env == "prod" || env == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		router = gin.New()

		router.Use(gin.Recovery())
		router.Use(RequestID())
		router.Use(Cors())
		router.Use(RequestMetrics())

		RegisterRoutes(router, cfg, handlers)
	})
}

func Instance() *gin.Engine {
	if router == nil {
		log.Fatal().Msg("Router not initialized")
	}
	return router
}

// Run blocks serving the router on the configured port.
func Run(cfg config.Configs) error {
	return Instance().Run(fmt.Sprintf(":%d", cfg.ApplicationPort))
}

// RegisterRoutes mounts every route the service exposes.
func RegisterRoutes(router *gin.Engine, cfg config.Configs, handlers Handlers) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.ApplicationName,
		})
	})
	router.GET("/health/self", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "true"})
	})

	router.POST("/predict", handlers.Predict.Predict)
	router.GET("/docs", handlers.Docs.Docs)

	if handlers.Analysis != nil {
		delayGroup := router.Group("/api/v1/delay")
		delayGroup.GET("/summary", handlers.Analysis.Summary)
		delayGroup.GET("/overview", handlers.Analysis.Overview)
		delayGroup.GET("/threshold", handlers.Analysis.Threshold)
		delayGroup.GET("/threshold/sweep", handlers.Analysis.Sweep)
	}
}
