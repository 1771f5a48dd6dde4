package logger_test

import (
	"errors"

	"github.com/wonny/ordercast/pkg/config"
	"github.com/wonny/ordercast/pkg/logger"
)

// Example demonstrates handing the logger to engine components
func Example() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	// Create logger (SSOT)
	log := logger.New(cfg)

	log.WithField("store_id", "46513").Info("order prediction started")
	log.WithError(errors.New("broker down")).Warn("feedback disabled")

	// 엔진 컴포넌트용 zerolog
	zl := log.Zerolog().With().Str("component", "runner").Logger()
	zl.Info().Int("items", 120).Msg("store batch completed")
}
