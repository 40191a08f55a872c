// Package clock abstracts the wall clock so timestamp fallbacks can be pinned
// in tests.
package clock

import "time"

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed time.Time

// Now implements Clock.
func (f Fixed) Now() time.Time { return time.Time(f) }
