package safe

import (
	"runtime/debug"

	"VProject/logger"
)

// Go runs fn on its own goroutine and logs a recovered panic instead of
// crashing the process.
func Go(name string, fn func()) {
	go func() {
		defer Recover(name)
		fn()
	}()
}

// Recover logs a panic with its stack. Use with defer around per-frame work:
// a panic in one frame handler must never take the connection down.
func Recover(name string) {
	if r := recover(); r != nil {
		logger.Errorf("[%s] panic recovered: %v\n%s", name, r, debug.Stack())
	}
}

// RecoverWith invokes onPanic after logging, so callers can surface a
// generic error to the peer.
func RecoverWith(name string, onPanic func(r any)) {
	if r := recover(); r != nil {
		logger.Errorf("[%s] panic recovered: %v\n%s", name, r, debug.Stack())
		if onPanic != nil {
			onPanic(r)
		}
	}
}
