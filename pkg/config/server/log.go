// Copyright (C) 2017 ScyllaDB

package server

import (
	"github.com/scylladb/go-log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig is go-log configuration, in development mode the output is
// human readable and colored.
type LogConfig struct {
	log.Config  `yaml:",inline"`
	Development bool `yaml:"development"`
}

func DefaultLogConfig() LogConfig {
	return LogConfig{
		Config: log.Config{
			Mode:     log.StderrMode,
			Level:    zap.NewAtomicLevelAt(zapcore.InfoLevel),
			Encoding: log.JSONEncoding,
		},
	}
}

// MakeLogger creates application logger for the configuration.
func (c Config) MakeLogger() (log.Logger, error) {
	if c.Logger.Development {
		return log.NewDevelopmentWithLevel(c.Logger.Level.Level()), nil
	}
	return log.NewProduction(c.Logger.Config)
}
