package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var once sync.Once

// Init configures the global zerolog logger from APP_LOG_LEVEL. Outside of
// prod the console writer is used so local logs stay readable.
func Init() {
	once.Do(func() {
		logLevel := strings.ToUpper(viper.GetString("APP_LOG_LEVEL"))
		switch logLevel {
		case "DEBUG":
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		case "INFO", "":
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		case "WARN":
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		case "ERROR":
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		case "FATAL":
			zerolog.SetGlobalLevel(zerolog.FatalLevel)
		case "PANIC":
			zerolog.SetGlobalLevel(zerolog.PanicLevel)
		case "DISABLED":
			zerolog.SetGlobalLevel(zerolog.Disabled)
		default:
			log.Panic().Msgf("Incorrect log level %s", logLevel)
		}

		env := strings.ToLower(viper.GetString("APP_ENV"))
		if env != "prod" && env != "production" {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
		}
		log.Logger = log.Logger.With().Str("service", viper.GetString("APP_NAME")).Logger()
		log.Info().Msg("Logger initialized!")
	})
}
