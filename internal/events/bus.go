// Package events re-exports the platform event bus so bounded contexts can
// import bus and event definitions from one place.
package events

import (
	platformevents "smart_crm_backend/platform/events"
	"smart_crm_backend/platform/logger"
)

// InMemoryBus is the platform in-process bus.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
