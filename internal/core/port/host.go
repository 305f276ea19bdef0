package port

import (
	"context"
	"time"

	"tariffpilot/internal/core/domain"
)

// Clock provides the controller's notion of now, always timezone-aware.
type Clock interface {
	Now() time.Time
}

// StateReader reads typed values from the host entity registry. The second
// return value is false when the entity or attribute is missing; the values
// "unknown", "unavailable" and the empty string are reported as missing too.
type StateReader interface {
	GetState(entityId string) (string, bool)
	GetAttribute(entityId string, attribute string) (string, bool)
}

// ServiceResult is the host's response to a service call.
type ServiceResult struct {
	Success bool
	Fields  map[string]any
}

// ServiceCaller invokes host services. Call blocks until the host confirms
// delivery; CallAsync returns immediately and delivers the result to the
// callback. A dry-run implementation may log instead of invoking the host.
type ServiceCaller interface {
	Call(service string, data map[string]any) (*ServiceResult, error)
	CallAsync(service string, data map[string]any, callback func(*ServiceResult, error))
}

// StateFactory builds controller snapshots. A build fails when any
// mandatory entity is missing, and the error lists every missing name.
type StateFactory interface {
	BuildSolar(now time.Time) (*domain.State, error)
	BuildHvac(now time.Time) (*domain.HvacState, error)
}

// Scheduler delivers periodic and daily triggers on the host event loop.
type Scheduler interface {
	Every(name string, every time.Duration, fn func()) error
	Daily(name string, at domain.TimeOfDay, fn func()) error
	Start(ctx context.Context)
	Stop()
}
