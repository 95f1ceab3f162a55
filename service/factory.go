package service

import (
	"fmt"
	"strconv"

	"github.com/relex/gotils/logger"
	"github.com/relex/ringlog/appender"
	"github.com/relex/ringlog/base"
	"github.com/relex/ringlog/config"
)

// buildAppenders constructs the configured appender pipeline; sinks and
// layouts are composed by interface, no appender subclassing anywhere
func buildAppenders(parentLogger logger.Logger, cfg config.Config,
	errorHandler base.ErrorHandler, metrics *base.Metrics) ([]*appender.Appender, error) {

	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf(".timeZoneId: %w", err)
	}
	layout := appender.NewDefaultLayout(location)

	appenders := make([]*appender.Appender, 0, len(cfg.Appenders))
	for i, appCfg := range cfg.Appenders {
		sink, err := buildSink(parentLogger, appCfg)
		if err != nil {
			return nil, fmt.Errorf(".appenders[%d]: %w", i, err)
		}
		level := cfg.LogLevel
		if appCfg.Level != nil {
			level = *appCfg.Level
		}
		immediateFlush := cfg.ImmediateFlush
		if appCfg.ImmediateFlush != nil {
			immediateFlush = *appCfg.ImmediateFlush
		}
		appenders = append(appenders, appender.New(appender.Args{
			Name:                appCfg.Type + "-" + strconv.Itoa(i),
			Level:               level,
			Layout:              layout,
			Sink:                sink,
			ImmediateFlush:      immediateFlush,
			BufferedIOThreshold: cfg.BufferedIOThreshold,
			ErrorHandler:        errorHandler,
			Metrics:             metrics,
		}))
	}
	return appenders, nil
}

func buildSink(parentLogger logger.Logger, appCfg config.AppenderConfig) (base.Sink, error) {
	switch appCfg.Type {
	case config.AppenderConsole:
		return appender.NewConsoleSink(), nil
	case config.AppenderFile:
		return appender.NewFileSink(appCfg.Path)
	case config.AppenderRotating:
		return appender.NewRotatingFileSink(parentLogger, appender.RotatingFileArgs{
			Path:       appCfg.Path,
			MaxBytes:   int64(appCfg.RotateSize.Bytes()),
			MaxBackups: appCfg.MaxBackups,
			Compress:   appCfg.Compress,
		})
	case config.AppenderNull:
		return appender.NewNullSink(), nil
	default:
		return nil, fmt.Errorf("unsupported appender type '%s'", appCfg.Type)
	}
}
