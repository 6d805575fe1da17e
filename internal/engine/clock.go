package engine

import "time"

// Clock abstracts time.Now() so "today" can be pinned in tests.
// Handlers resolve the current instant through it before calling into the date arithmetic.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
