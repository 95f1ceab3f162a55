package defs

import (
	"time"
)

var (
	// DefaultRingSize defines the number of record slots in the ring if not configured
	//
	// Must be a power of two; each slot owns a payload buffer of DefaultSlotBufferBytes,
	// so the default ring preallocates 64 MiB
	DefaultRingSize = 64

	// DefaultSlotBufferBytes defines the payload capacity of one record slot
	//
	// Exceeding it truncates the record and appends TruncationMark
	DefaultSlotBufferBytes = 1 << 20

	// DefaultBufferedIOThreshold defines how many buffered output records force a flush to the sink
	DefaultBufferedIOThreshold = 100

	// DefaultAwaitTimeout defines how long blocking wait strategies park before re-checking the halt flag
	DefaultAwaitTimeout = 10 * time.Millisecond

	// MaxOriginChars defines the maximum length of a record's origin (the producer name filling
	// the thread-name role); longer names are truncated when copied into a slot
	MaxOriginChars = 32

	// OutputBufferRecordEstimate is the assumed typical rendered record size, used to size
	// the appender output buffer as BufferedIOThreshold * OutputBufferRecordEstimate
	OutputBufferRecordEstimate = 256

	// ClaimSpinLimit defines how many tight spins a producer performs on a full ring
	// before falling back to the wait strategy's backoff
	ClaimSpinLimit = 100

	// YieldSpinLimit defines how many tight spins the yielding wait strategy performs
	// before yielding the scheduler
	YieldSpinLimit = 100

	// SleepSpinLimit defines how many spin+yield rounds the sleeping wait strategy performs
	// before it starts sleeping in increasing intervals
	SleepSpinLimit = 200

	// MinSleepInterval is the first parking interval of the sleeping wait strategy;
	// doubled on each idle round up to the configured await timeout
	MinSleepInterval = 50 * time.Microsecond

	// ServiceStopTimeout is the default duration to wait for the final drain when stopping
	// the logger service without an explicit timeout
	ServiceStopTimeout = 5 * time.Second
)

// For testing and experiments
const (
	TestReadTimeout = 5 * time.Second
)
