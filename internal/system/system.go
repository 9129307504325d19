package system

import (
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	// respects container CPU quotas when sizing GOMAXPROCS
	_ "go.uber.org/automaxprocs"
)

const appGCPercentage = "APP_GC_PERCENTAGE"

// Init applies process-level runtime tuning. Must run after config binding
// so APP_GC_PERCENTAGE is visible.
func Init() {
	if viper.IsSet(appGCPercentage) {
		gcPercentage := viper.GetInt(appGCPercentage)
		debug.SetGCPercent(gcPercentage)
		log.Info().Int("gc_percentage", gcPercentage).Msg("GC percentage overridden")
	}
	log.Info().Int("gomaxprocs", runtime.GOMAXPROCS(0)).Msg("Runtime initialized")
}
