package util

import (
	"sync/atomic"
)

// NewRunOnce wraps f so it runs at most once, reporting whether this call ran
// it. Used to protect resource cleanup like sink closing.
func NewRunOnce(f func()) func() bool {
	var invoked int32
	return func() bool {
		if !atomic.CompareAndSwapInt32(&invoked, 0, 1) {
			return false
		}
		f()
		return true
	}
}

// NewRunOnceError wraps f so it runs at most once; later calls return the
// first result
func NewRunOnceError(f func() error) func() error {
	var invoked int32
	var result atomic.Value
	return func() error {
		if atomic.CompareAndSwapInt32(&invoked, 0, 1) {
			if err := f(); err != nil {
				result.Store(err)
				return err
			}
			return nil
		}
		if err, ok := result.Load().(error); ok {
			return err
		}
		return nil
	}
}
