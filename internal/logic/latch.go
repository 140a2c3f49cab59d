package logic

import "sync/atomic"

// EdgeLatch holds the most recent raw level of one digital input.
//
// It is the only state shared between the edge notification goroutine and the
// poll loop: the notification handler is the single writer, the arbiter the
// single reader. No other field of the engine is touched outside the poll loop.
type EdgeLatch struct {
	level atomic.Bool
}

// Set records a new raw level. Called from the notification context.
func (l *EdgeLatch) Set(level bool) {
	l.level.Store(level)
}

// Level returns the most recently written raw level.
func (l *EdgeLatch) Level() bool {
	return l.level.Load()
}

// interruptFlag is raised by the accelerometer interrupt handler and cleared
// by the poll loop.
type interruptFlag struct {
	pending atomic.Bool
}

func (f *interruptFlag) raise() {
	f.pending.Store(true)
}

// take reports whether the flag was raised and clears it in one step, so an
// interrupt arriving after take is seen on the next poll rather than lost.
func (f *interruptFlag) take() bool {
	return f.pending.Swap(false)
}
