// Package notify defines the user-feedback sink the portal core reports
// through. Notifications are fire-and-forget and never drive control flow.
package notify

import (
	"log"
	"time"
)

// Sink receives transient user-facing messages.
type Sink interface {
	Notify(message string, duration time.Duration)
}

// Func adapts a plain function to a Sink.
type Func func(message string, duration time.Duration)

// Notify implements Sink.
func (f Func) Notify(message string, duration time.Duration) {
	f(message, duration)
}

// Logger is a Sink that writes to the standard logger.
// Used by the CLI and servers, where there is no editor chrome to flash.
type Logger struct{}

// Notify implements Sink.
func (Logger) Notify(message string, _ time.Duration) {
	log.Printf("notice: %s", message)
}

// Discard is a Sink that drops all messages.
var Discard = Func(func(string, time.Duration) {})
