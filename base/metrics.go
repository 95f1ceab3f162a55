package base

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promext"
)

// Metrics is the set of counters one logger service updates. Counter vecs are
// registered once per process and curried by service name, so tests can build
// any number of services.
type Metrics struct {
	RecordsPublished promext.RWCounter
	RecordsDropped   promext.RWCounter
	RecordsTruncated promext.RWCounter
	PatternErrors    promext.RWCounter
	SinkErrors       promext.RWCounter
	Flushes          promext.RWCounter
	BytesWritten     promext.RWCounter
}

var metricsOnce sync.Once

var (
	recordsPublishedVec *promext.RWCounterVec
	recordsDroppedVec   *promext.RWCounterVec
	recordsTruncatedVec *promext.RWCounterVec
	patternErrorsVec    *promext.RWCounterVec
	sinkErrorsVec       *promext.RWCounterVec
	flushesVec          *promext.RWCounterVec
	bytesWrittenVec     *promext.RWCounterVec
)

// NewMetrics creates the counter set for one named service
func NewMetrics(serviceName string) *Metrics {
	metricsOnce.Do(registerMetricVecs)
	return &Metrics{
		RecordsPublished: recordsPublishedVec.WithLabelValues(serviceName),
		RecordsDropped:   recordsDroppedVec.WithLabelValues(serviceName),
		RecordsTruncated: recordsTruncatedVec.WithLabelValues(serviceName),
		PatternErrors:    patternErrorsVec.WithLabelValues(serviceName),
		SinkErrors:       sinkErrorsVec.WithLabelValues(serviceName),
		Flushes:          flushesVec.WithLabelValues(serviceName),
		BytesWritten:     bytesWrittenVec.WithLabelValues(serviceName),
	}
}

func registerMetricVecs() {
	recordsPublishedVec = newCounterVec("ringlog_records_published_total", "Numbers of records published into the ring")
	recordsDroppedVec = newCounterVec("ringlog_records_dropped_total", "Numbers of records dropped (shutdown or would-block)")
	recordsTruncatedVec = newCounterVec("ringlog_records_truncated_total", "Numbers of records truncated on payload overflow")
	patternErrorsVec = newCounterVec("ringlog_pattern_errors_total", "Numbers of records failing template placeholder validation")
	sinkErrorsVec = newCounterVec("ringlog_sink_errors_total", "Numbers of sink write or flush failures")
	flushesVec = newCounterVec("ringlog_flushes_total", "Numbers of output buffer flushes to sinks")
	bytesWrittenVec = newCounterVec("ringlog_bytes_written_total", "Total bytes handed to sinks")
}

func newCounterVec(name string, help string) *promext.RWCounterVec {
	opts := prometheus.CounterOpts{}
	opts.Name = name
	opts.Help = help
	vec := promext.NewRWCounterVec(opts, []string{"service"})
	if err := prometheus.Register(vec); err != nil {
		logger.Panicf("failed to register counter-vec '%s': %s", name, err.Error())
	}
	return vec
}
