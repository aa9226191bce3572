package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall time so lead-time and availability math is testable.
type Clock interface {
	Now() time.Time
}

// Today returns the UTC calendar date for the clock's current instant.
func Today(c Clock) time.Time {
	return c.Now().UTC().Truncate(24 * time.Hour)
}

var Module = fx.Provide(NewSystemClock)

type SystemClock struct{}

func NewSystemClock() Clock {
	return SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
