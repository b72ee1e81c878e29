package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger собирает логгер из LOG_LEVEL/LOG_FORMAT. Неизвестный уровень считается info.
func NewLogger(cfg *AppConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
