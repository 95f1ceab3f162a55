package service

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/relex/gotils/logger"
	"github.com/relex/ringlog/appender"
	"github.com/relex/ringlog/base"
	"github.com/relex/ringlog/config"
	"github.com/relex/ringlog/defs"
	"github.com/relex/ringlog/ring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns a small configuration suitable for tests; slots default
// to 1 MiB in production and would dominate test memory otherwise
func testConfig(name string) config.Config {
	cfg := config.Default()
	cfg.Name = name
	cfg.BufferSize = config.Size(256)
	cfg.RingSize = 16
	cfg.LogLevel = base.TraceLevel
	cfg.WaitStrategy = ring.WaitBlocking
	cfg.AwaitTimeoutMillis = 1
	return cfg
}

// newCaptureService builds a started service writing raw payloads into the
// returned buffer, one line per record
func newCaptureService(t *testing.T, cfg config.Config) (*Service, *bytes.Buffer) {
	output := &bytes.Buffer{}
	app := appender.New(appender.Args{
		Name:                "capture",
		Level:               base.TraceLevel,
		Layout:              appender.RawLayout{},
		Sink:                appender.NewWriterSink(output),
		BufferedIOThreshold: 4,
	})
	svc, err := New(logger.WithField("test", t.Name()), cfg, Options{
		Clock:     base.FixedClock(1600000000000),
		Appenders: []*appender.Appender{app},
	})
	require.NoError(t, err)
	svc.Start()
	return svc, output
}

func TestSingleProducerOrderedOutput(t *testing.T) {
	cfg := testConfig("t-ordered")
	cfg.RingSize = 4
	svc, output := newCaptureService(t, cfg)

	log := svc.Logger("app")
	for i := 0; i < 10; i++ {
		log.Info().Append("msg-").AppendInt(i).Commit()
	}
	require.NoError(t, svc.Stop(defs.TestReadTimeout))

	expected := ""
	for i := 0; i < 10; i++ {
		expected += fmt.Sprintf("msg-%d\n", i)
	}
	assert.Equal(t, expected, output.String())
	assert.EqualValues(t, 10, svc.Metrics().RecordsPublished.Get())
}

func TestProducerBlocksOnFullRing(t *testing.T) {
	cfg := testConfig("t-backpressure")
	cfg.RingSize = 2

	gate := make(chan struct{})
	output := &bytes.Buffer{}
	app := appender.New(appender.Args{
		Name:                "gated",
		Level:               base.TraceLevel,
		Layout:              appender.RawLayout{},
		Sink:                &gatedSink{gate: gate, output: output},
		ImmediateFlush:      true,
		BufferedIOThreshold: 1,
	})
	svc, err := New(logger.WithField("test", t.Name()), cfg, Options{
		Appenders: []*appender.Appender{app},
	})
	require.NoError(t, err)
	svc.Start()

	log := svc.Logger("app")
	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			log.Info().Append("r").AppendInt(i).Commit()
		}
		close(done)
	}()

	// the consumer is stuck on the first flush, so the third claim must block
	select {
	case <-done:
		t.Fatal("producer finished although the ring is full and unconsumed")
	case <-time.After(100 * time.Millisecond):
	}

	close(gate)
	select {
	case <-done:
	case <-time.After(defs.TestReadTimeout):
		t.Fatal("producer still blocked after the consumer advanced")
	}

	require.NoError(t, svc.Stop(defs.TestReadTimeout))
	assert.Equal(t, "r0\nr1\nr2\n", output.String())
}

// gatedSink blocks every write until the gate is closed
type gatedSink struct {
	gate   chan struct{}
	output *bytes.Buffer
}

func (s *gatedSink) Write(p []byte) (int, error) {
	<-s.gate
	return s.output.Write(p)
}

func (s *gatedSink) Flush() error { return nil }
func (s *gatedSink) Close() error { return nil }

func TestMultiProducerNoLossPerThreadOrder(t *testing.T) {
	const producers = 4
	const perProducer = 1000
	cfg := testConfig("t-multiproducer")
	cfg.RingSize = 16
	svc, output := newCaptureService(t, cfg)

	log := svc.Logger("app")
	wg := &sync.WaitGroup{}
	for p := 0; p < producers; p++ {
		wg.Add(1)
		producer := p
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				log.Info().Pattern("p%s-%s").WithInt(producer).WithInt(i).Commit()
			}
		}()
	}
	wg.Wait()
	require.NoError(t, svc.Stop(defs.TestReadTimeout))

	lines := strings.Split(strings.TrimSuffix(output.String(), "\n"), "\n")
	require.Equal(t, producers*perProducer, len(lines))

	lastByProducer := map[string]int{}
	counts := map[string]int{}
	for _, line := range lines {
		parts := strings.SplitN(strings.TrimPrefix(line, "p"), "-", 2)
		require.Equal(t, 2, len(parts), "malformed line %q", line)
		index, err := strconv.Atoi(parts[1])
		require.NoError(t, err)
		last, seen := lastByProducer[parts[0]]
		if seen {
			assert.Greater(t, index, last, "per-producer order broken for producer %s", parts[0])
		}
		lastByProducer[parts[0]] = index
		counts[parts[0]]++
	}
	for p := 0; p < producers; p++ {
		assert.Equal(t, perProducer, counts[strconv.Itoa(p)])
	}
}

func TestPatternExpansion(t *testing.T) {
	cfg := testConfig("t-pattern")
	svc, output := newCaptureService(t, cfg)

	log := svc.Logger("app")
	log.Info().Pattern("a=%s, b=%s").WithInt(1).WithInt(2).Commit()
	log.Info().Pattern("100%% of %s").With("cases").Commit()
	log.Info().Pattern("no placeholders").Commit()
	require.NoError(t, svc.Stop(defs.TestReadTimeout))

	assert.Equal(t, "a=1, b=2\n100% of cases\nno placeholders\n", output.String())
}

func TestPatternMisuse(t *testing.T) {
	cfg := testConfig("t-misuse")
	svc, output := newCaptureService(t, cfg)

	log := svc.Logger("app")
	// too few values
	log.Info().Pattern("a=%s, b=%s").WithInt(1).Commit()
	// too many values
	log.Info().Pattern("only %s").WithInt(1).WithInt(2).Commit()
	// value without pattern
	log.Info().WithInt(1).Commit()
	require.NoError(t, svc.Stop(defs.TestReadTimeout))

	lines := strings.Split(strings.TrimSuffix(output.String(), "\n"), "\n")
	require.Equal(t, 3, len(lines))
	for _, line := range lines {
		assert.Contains(t, line, "pattern misuse:")
		assert.NotContains(t, line, "a=1")
	}
	assert.EqualValues(t, 3, svc.Metrics().PatternErrors.Get())
}

func TestPayloadTruncation(t *testing.T) {
	cfg := testConfig("t-truncation")
	cfg.BufferSize = config.Size(8)
	svc, output := newCaptureService(t, cfg)

	log := svc.Logger("app")
	log.Info().Append("0123").Append("4567890123").AppendInt(99).Commit()
	require.NoError(t, svc.Stop(defs.TestReadTimeout))

	// the oversized append contributes nothing (position is pre-call on
	// overflow) and the truncation mark replaces the tail
	assert.Equal(t, "0123>>\n", output.String())
	assert.EqualValues(t, 1, svc.Metrics().RecordsTruncated.Get())
}

func TestLevelFiltering(t *testing.T) {
	cfg := testConfig("t-levels")
	cfg.LogLevel = base.WarnLevel
	svc, output := newCaptureService(t, cfg)

	log := svc.Logger("app")
	log.Debug().Append("hidden").Commit()
	log.Info().Append("hidden too").Commit()
	log.Warn().Append("visible").Commit()
	log.Error().Append("also visible").Commit()
	require.NoError(t, svc.Stop(defs.TestReadTimeout))

	assert.Equal(t, "visible\nalso visible\n", output.String())
	assert.EqualValues(t, 2, svc.Metrics().RecordsPublished.Get())
}

func TestLevelOverridesByGlob(t *testing.T) {
	cfg := testConfig("t-overrides")
	cfg.LogLevel = base.ErrorLevel
	cfg.Levels = []config.LevelOverride{
		{Match: "db.*", Level: base.DebugLevel},
		{Match: "db.noisy", Level: base.ErrorLevel}, // shadowed: first match wins
	}
	svc, output := newCaptureService(t, cfg)

	svc.Logger("db.pool").Debug().Append("pool debug").Commit()
	svc.Logger("db.noisy").Debug().Append("noisy debug").Commit() // db.* matched first
	svc.Logger("web").Debug().Append("web debug").Commit()
	require.NoError(t, svc.Stop(defs.TestReadTimeout))

	assert.Equal(t, "pool debug\nnoisy debug\n", output.String())
	assert.Equal(t, base.DebugLevel, svc.Logger("db.pool").Level())
	assert.Equal(t, base.ErrorLevel, svc.Logger("web").Level())
}

func TestMultibytePayload(t *testing.T) {
	cfg := testConfig("t-multibyte")
	cfg.Multibyte = true
	svc, output := newCaptureService(t, cfg)

	log := svc.Logger("app")
	log.Info().Append("héllo ").AppendRune('日').Append(" x=").AppendInt(5).Commit()
	require.NoError(t, svc.Stop(defs.TestReadTimeout))

	assert.Equal(t, "héllo 日 x=5\n", output.String())
}

func TestTryLogWouldBlock(t *testing.T) {
	cfg := testConfig("t-trylog")
	cfg.RingSize = 2

	gate := make(chan struct{})
	app := appender.New(appender.Args{
		Name:                "gated",
		Level:               base.TraceLevel,
		Layout:              appender.RawLayout{},
		Sink:                &gatedSink{gate: gate, output: &bytes.Buffer{}},
		ImmediateFlush:      true,
		BufferedIOThreshold: 1,
	})
	svc, err := New(logger.WithField("test", t.Name()), cfg, Options{
		Appenders: []*appender.Appender{app},
	})
	require.NoError(t, err)
	svc.Start()

	log := svc.Logger("app")
	log.Info().Append("a").Commit()
	log.Info().Append("b").Commit()

	// ring full and consumer gated: a try-claim must fail instead of blocking
	deadline := time.Now().Add(defs.TestReadTimeout)
	for {
		_, terr := log.TryLog(base.InfoLevel)
		if terr != nil {
			assert.ErrorIs(t, terr, ring.ErrWouldBlock)
			break
		}
		// the consumer may not have started batching yet; discard and retry
		if time.Now().After(deadline) {
			t.Fatal("TryLog never reported would-block on a full ring")
		}
	}
	assert.Positive(t, svc.Metrics().RecordsDropped.Get())

	close(gate)
	require.NoError(t, svc.Stop(defs.TestReadTimeout))
}

func TestDropAfterStop(t *testing.T) {
	cfg := testConfig("t-dropstop")
	svc, output := newCaptureService(t, cfg)

	log := svc.Logger("app")
	log.Info().Append("before stop").Commit()
	require.NoError(t, svc.Stop(defs.TestReadTimeout))

	// never throws into the application; the record is silently dropped
	log.Info().Append("after stop").Commit()
	assert.Equal(t, "before stop\n", output.String())
	assert.Positive(t, svc.Metrics().RecordsDropped.Get())
}

func TestShutdownDrainUnderLoad(t *testing.T) {
	const producers = 2
	const perProducer = 500
	cfg := testConfig("t-drain")
	cfg.RingSize = 8
	svc, output := newCaptureService(t, cfg)

	log := svc.Logger("app")
	wg := &sync.WaitGroup{}
	for p := 0; p < producers; p++ {
		wg.Add(1)
		producer := p
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				log.Info().Pattern("d%s-%s").WithInt(producer).WithInt(i).Commit()
			}
		}()
	}
	wg.Wait()
	// every record is published at this point; stopping must drain all of them
	require.NoError(t, svc.Stop(defs.TestReadTimeout))

	lines := strings.Split(strings.TrimSuffix(output.String(), "\n"), "\n")
	assert.Equal(t, producers*perProducer, len(lines))
	seen := map[string]bool{}
	for _, line := range lines {
		assert.False(t, seen[line], "duplicate line %q", line)
		seen[line] = true
	}
}

func TestStopDuringLoadLosesNothingConsumed(t *testing.T) {
	cfg := testConfig("t-stopload")
	cfg.RingSize = 8
	svc, output := newCaptureService(t, cfg)

	log := svc.Logger("app")
	stop := make(chan struct{})
	wg := &sync.WaitGroup{}
	for p := 0; p < 2; p++ {
		wg.Add(1)
		producer := p
		go func() {
			defer wg.Done()
			for i := 0; ; i++ {
				entry, err := log.TryLog(base.InfoLevel)
				if err == ring.ErrShutdown {
					return
				}
				entry.Pattern("s%s-%s").WithInt(producer).WithInt(i).Commit()
				select {
				case <-stop:
					return
				default:
				}
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, svc.Stop(defs.TestReadTimeout))
	close(stop)
	wg.Wait()

	// whatever was drained is complete lines without duplicates
	content := output.String()
	if content == "" {
		return
	}
	require.True(t, strings.HasSuffix(content, "\n"))
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	seen := map[string]bool{}
	for _, line := range lines {
		require.Regexp(t, `^s[01]-\d+$`, line)
		assert.False(t, seen[line], "duplicate line %q", line)
		seen[line] = true
	}
}

func TestOriginTruncatedInSlot(t *testing.T) {
	cfg := testConfig("t-origin")
	svc, _ := newCaptureService(t, cfg)
	defer svc.Stop(defs.TestReadTimeout)

	long := strings.Repeat("x", defs.MaxOriginChars+10)
	log := svc.Logger("app").WithOrigin(long)
	entry := log.Info()
	require.NotSame(t, muted, entry)
	assert.Equal(t, defs.MaxOriginChars, len(entry.slot.Origin()))
	entry.Append("ok").Commit()
}
