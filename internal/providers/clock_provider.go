package providers

import "github.com/juju/clock"

func NewClockProvider() clock.Clock {
	return clock.WallClock
}
