package base

import (
	"time"
)

// Clock is the injectable time source; records carry NowMillis at claim time
type Clock interface {
	NowMillis() int64
}

// SystemClock reads the wall clock
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) NowMillis() int64 {
	return time.Now().UnixMilli()
}

// FixedClock is a deterministic Clock for tests
type FixedClock int64

// NowMillis returns the fixed instant
func (c FixedClock) NowMillis() int64 {
	return int64(c)
}
