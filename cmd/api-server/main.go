package main

import (
	"github.com/rs/zerolog/log"

	"github.com/getaround-ml/pricing-inference/internal/config"
	"github.com/getaround-ml/pricing-inference/internal/delay"
	"github.com/getaround-ml/pricing-inference/internal/handler/analysis"
	"github.com/getaround-ml/pricing-inference/internal/handler/docs"
	"github.com/getaround-ml/pricing-inference/internal/handler/predict"
	"github.com/getaround-ml/pricing-inference/internal/model"
	httpserver "github.com/getaround-ml/pricing-inference/internal/server/http"
	"github.com/getaround-ml/pricing-inference/internal/system"
	"github.com/getaround-ml/pricing-inference/pkg/inmemorycache"
	"github.com/getaround-ml/pricing-inference/pkg/logger"
	"github.com/getaround-ml/pricing-inference/pkg/metric"
)

func main() {
	var appConfig config.Configs
	config.InitConfig(&appConfig)
	logger.Init()
	metric.Init()
	system.Init()

	// the service must not come up without a model
	bundle, err := model.Load(appConfig.ModelBundlePath)
	if err != nil {
		log.Panic().Err(err).Str("path", appConfig.ModelBundlePath).Msg("Failed to load model bundle")
	}

	var cache inmemorycache.InMemoryCache
	if appConfig.InMemoryCacheSizeInBytes > 0 {
		inmemorycache.Init()
		cache = inmemorycache.Instance()
	}

	var memo *predict.Memo
	if appConfig.PredictionCacheEnabled {
		if cache == nil {
			log.Panic().Msg("PREDICTION_CACHE_ENABLED requires IN_MEMORY_CACHE_SIZE_IN_BYTES")
		}
		memo = predict.NewMemo(cache, appConfig.PredictionCacheTTLSec)
	}

	docsHandler, err := docs.NewHandler(bundle)
	if err != nil {
		log.Panic().Err(err).Msg("Failed to render docs page")
	}

	handlers := httpserver.Handlers{
		Predict: predict.NewHandler(bundle, memo),
		Docs:    docsHandler,
	}

	if appConfig.DelayDatasetEnabled {
		store, err := delay.LoadCSV(appConfig.DelayDatasetPath)
		if err != nil {
			log.Panic().Err(err).Str("path", appConfig.DelayDatasetPath).Msg("Failed to load delay dataset")
		}
		handlers.Analysis = analysis.NewHandler(store, cache)
	}

	httpserver.Init(appConfig, handlers)
	log.Info().Int("port", appConfig.ApplicationPort).Msg("Starting pricing-inference server")
	if err := httpserver.Run(appConfig); err != nil {
		log.Panic().Err(err).Msg("Server exited")
	}
}
