package worker

import (
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

type LoggerConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"debug"`
}

func loggerProvider() (*zap.SugaredLogger, error) {
	cfg := LoggerConfig{}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.Level = level
	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
