package util

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/relex/gotils/logger"
)

func init() {
	_ = pprof.Handler // to trigger registrations under "/debug/pprof/"
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><h1>ringlog metrics listener</h1><ul>
<li><a href='/debug/pprof'>/debug/pprof</a></li>
<li><a href='/metrics'>/metrics</a></li>
</ul></body></html>`)
	})
}

// LaunchMetricsListener starts a HTTP server for Prometheus metrics and pprof,
// used by the benchmark command
func LaunchMetricsListener(address string) *http.Server {
	mlogger := logger.WithField("component", "MetricsListener")
	server := &http.Server{Addr: address}
	go func() {
		mlogger.Infof("listening on %s for metrics...", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mlogger.Error("Prometheus listener error: ", err)
		}
	}()
	return server
}

// SumMetricValues sums all the values of a given Prometheus Collector
// (GaugeVec or CounterVec), for tests
func SumMetricValues(c prometheus.Collector) float64 {
	mChan := make(chan prometheus.Metric, 100)
	go func() {
		c.Collect(mChan)
		close(mChan)
	}()

	sum := 0.0
	for m := range mChan {
		pb := &dto.Metric{}
		if err := m.Write(pb); err != nil {
			logger.Errorf("failed to read metric '%s': %s", m.Desc(), err.Error())
			continue
		}
		switch {
		case pb.Gauge != nil:
			sum += pb.Gauge.GetValue()
		case pb.Counter != nil:
			sum += pb.Counter.GetValue()
		case pb.Untyped != nil:
			sum += pb.Untyped.GetValue()
		}
	}
	return sum
}
