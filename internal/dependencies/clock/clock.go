package clock

import "time"

// Clock provides the current time and can be mocked in tests
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// TimeFunc adapts a Clock to libraries that take a func() time.Time
func TimeFunc(c Clock) func() time.Time {
	return c.Now
}
