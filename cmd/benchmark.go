package cmd

import (
	"context"
	"sync"
	"time"

	"github.com/relex/gotils/logger"
	"github.com/relex/ringlog/config"
	"github.com/relex/ringlog/defs"
	"github.com/relex/ringlog/ring"
	"github.com/relex/ringlog/service"
)

type benchmarkCommandState struct {
	Config      string `help:"Configuration file path; empty benchmarks against a null appender"`
	Producers   int    `help:"Concurrent producer goroutines"`
	Records     int    `help:"Records per producer"`
	MetricsAddr string `help:"The listener address to expose Prometheus metrics and debug information"`
}

var benchCmd = benchmarkCommandState{
	Producers:   4,
	Records:     1000000,
	MetricsAddr: ":9335",
}

func (cmd *benchmarkCommandState) run(_ []string) {
	msrv := startMetricsListener(cmd.MetricsAddr)

	cfg := config.Default()
	if cmd.Config != "" {
		loaded, err := config.Load(cmd.Config)
		if err != nil {
			logger.Fatalf("failed to load config: %s", err.Error())
		}
		cfg = loaded
	} else {
		cfg.Appenders = []config.AppenderConfig{{Type: config.AppenderNull}}
		cfg.WaitStrategy = ring.WaitYielding
	}

	svc, err := service.New(logger.Root(), cfg, service.Options{})
	if err != nil {
		logger.Fatalf("failed to build service: %s", err.Error())
	}
	svc.Start()

	log := svc.Logger("bench")
	start := time.Now()
	wg := &sync.WaitGroup{}
	for p := 0; p < cmd.Producers; p++ {
		wg.Add(1)
		producer := p
		go func() {
			defer wg.Done()
			plog := log.WithOrigin("bench-" + string(rune('a'+producer%26)))
			for i := 0; i < cmd.Records; i++ {
				plog.Error().Pattern("producer %s record %s value=%s").
					WithInt(producer).WithInt(i).WithFloat64(float64(i) * 0.5).Commit()
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	if err := svc.Stop(defs.ServiceStopTimeout); err != nil {
		logger.Errorf("stop: %s", err.Error())
	}
	total := cmd.Producers * cmd.Records
	logger.Infof("published %d records in %s: %.0f records/sec",
		total, elapsed, float64(total)/elapsed.Seconds())

	if msrv != nil {
		if err := msrv.Shutdown(context.Background()); err != nil {
			logger.Errorf("error shutting down metrics listener: %s", err.Error())
		}
	}
}
