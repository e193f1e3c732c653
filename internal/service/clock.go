package service

import "time"

// Clock abstracts wall-clock time so time-gated logic is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Ensure SystemClock implements Clock.
var _ Clock = SystemClock{}
