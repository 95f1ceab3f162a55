package cmd

import (
	"github.com/relex/gotils/logger"
	"github.com/relex/ringlog/base"
	"github.com/relex/ringlog/config"
	"github.com/relex/ringlog/defs"
	"github.com/relex/ringlog/service"
)

type demoCommandState struct {
	Config  string `help:"Configuration file path; empty uses defaults with a console appender"`
	Records int    `help:"Records to emit"`
}

var demoCmd = demoCommandState{
	Records: 10,
}

func (cmd *demoCommandState) run(_ []string) {
	cfg := config.Default()
	if cmd.Config != "" {
		loaded, err := config.Load(cmd.Config)
		if err != nil {
			logger.Fatalf("failed to load config: %s", err.Error())
		}
		cfg = loaded
	} else if !cfg.LogLevel.Enables(base.InfoLevel) {
		cfg.LogLevel = base.InfoLevel // the default ERROR level would hide the samples
	}

	svc, err := service.New(logger.Root(), cfg, service.Options{})
	if err != nil {
		logger.Fatalf("failed to build service: %s", err.Error())
	}
	svc.Start()

	log := svc.Logger("demo").WithOrigin("demo-main")
	for i := 0; i < cmd.Records; i++ {
		log.Info().Pattern("sample record %s of %s, pi=%s").
			WithInt(i + 1).WithInt(cmd.Records).WithFloat64Digits(3.14159265, 4).Commit()
	}
	log.Info().Append("demo finished").Commit()

	if err := svc.Stop(defs.ServiceStopTimeout); err != nil {
		logger.Errorf("stop: %s", err.Error())
	}
}
