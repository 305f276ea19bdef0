package sched

import (
	"time"

	"tariffpilot/internal/core/port"
)

// LocationClock yields the current time in the configured zone so every
// wall-clock comparison downstream sees local tariff time.
type LocationClock struct {
	Location *time.Location
}

func (c LocationClock) Now() time.Time {
	return time.Now().In(c.Location)
}

// ensure interface compliance
var _ port.Clock = LocationClock{}
