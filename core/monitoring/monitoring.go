// Package monitoring reports unexpected errors and panics to an external
// error tracker. The decision engine receives a Monitor explicitly; the
// package level functions serve background goroutines started by the service.
package monitoring

import (
	"fmt"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// Current returns the global monitor.
func Current() Monitor { return current }

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if current != nil {
		current.CaptureException(err, tags)
	}
}

// Recover captures panics in goroutines.
func Recover() {
	if current != nil {
		current.Recover()
	}
}

// Go runs fn in a goroutine. A panic is reported to the global monitor and
// ends only that goroutine.
func Go(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				CaptureException(fmt.Errorf("panic in %s: %v", name, r), map[string]string{"goroutine": name})
			}
		}()
		fn()
	}()
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	if current != nil {
		current.Flush(d)
	}
}
