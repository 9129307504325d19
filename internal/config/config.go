package config

import (
	"log"

	"github.com/spf13/viper"
)

// Configs holds the static application configuration. Everything is bound
// from environment variables at startup; there is no dynamic config surface
// in this service.
type Configs struct {
	ApplicationEnv      string `mapstructure:"app_env"`
	ApplicationLogLevel string `mapstructure:"app_log_level"`
	ApplicationName     string `mapstructure:"app_name"`
	ApplicationPort     int    `mapstructure:"app_port"`
	AppGcPercentage     int    `mapstructure:"app_gc_percentage"`

	//model-bundle-config
	ModelBundlePath string `mapstructure:"model_bundlePath"`

	//delay-dataset-config
	DelayDatasetEnabled bool   `mapstructure:"delayDataset_enabled"`
	DelayDatasetPath    string `mapstructure:"delayDataset_path"`

	//in-memory-cache-config
	InMemoryCacheSizeInBytes int  `mapstructure:"in-memory-cache_size-in-bytes"`
	PredictionCacheEnabled   bool `mapstructure:"predictionCache_enabled"`
	PredictionCacheTTLSec    int  `mapstructure:"predictionCache_ttlSec"`

	//telegraf-config
	MetricsSamplingRate float64 `mapstructure:"metrics_sampling_rate"`
	Telegraf_Host       string  `mapstructure:"telegraf_host"`
	Telegraf_Port       string  `mapstructure:"telegraf_port"`
}

// InitConfig binds environment variables and unmarshals them into cfg.
func InitConfig(cfg *Configs) {
	viper.AutomaticEnv()
	bindEnvVars()

	if err := viper.Unmarshal(cfg); err != nil {
		log.Fatalf("Failed to unmarshal config from environment: %v", err)
	}

	if cfg.ApplicationPort == 0 {
		cfg.ApplicationPort = 8000
	}
	if cfg.ModelBundlePath == "" {
		cfg.ModelBundlePath = "rf_pricing_bundle.json"
	}
}

func bindEnvVars() {
	// Application config
	viper.BindEnv("app_env", "APP_ENV")
	viper.BindEnv("app_log_level", "APP_LOG_LEVEL")
	viper.BindEnv("app_name", "APP_NAME")
	viper.BindEnv("app_port", "APP_PORT")
	viper.BindEnv("app_gc_percentage", "APP_GC_PERCENTAGE")

	// Model bundle config
	viper.BindEnv("model_bundlePath", "MODEL_BUNDLE_PATH")

	// Delay dataset config
	viper.BindEnv("delayDataset_enabled", "DELAY_DATASET_ENABLED")
	viper.BindEnv("delayDataset_path", "DELAY_DATASET_PATH")

	// In-memory cache config
	viper.BindEnv("in-memory-cache_size-in-bytes", "IN_MEMORY_CACHE_SIZE_IN_BYTES")
	viper.BindEnv("predictionCache_enabled", "PREDICTION_CACHE_ENABLED")
	viper.BindEnv("predictionCache_ttlSec", "PREDICTION_CACHE_TTL_SEC")

	// Metrics / Telegraf config
	viper.BindEnv("metrics_sampling_rate", "METRIC_SAMPLING_RATE")
	viper.BindEnv("telegraf_host", "TELEGRAF_HOST")
	viper.BindEnv("telegraf_port", "TELEGRAF_PORT")
}
