package users

import (
	"strconv"

	"github.com/Syafiq-lab/library-management-be/audit"
)

// Event names published by the user service.
const (
	EventUserCreated = "USER_CREATED"
	EventUserUpdated = "USER_UPDATED"
	EventUserDeleted = "USER_DELETED"
)

const aggregateType = "USER"

// EventPublisher emits user lifecycle events through the shared async
// dispatcher. Publishing is best-effort and never blocks the request.
type EventPublisher struct {
	dispatcher *audit.Dispatcher
	source     string
}

// NewEventPublisher creates a publisher tagged with the source service name.
func NewEventPublisher(dispatcher *audit.Dispatcher, sourceService string) *EventPublisher {
	return &EventPublisher{dispatcher: dispatcher, source: sourceService}
}

// UserCreated publishes a USER_CREATED event.
func (p *EventPublisher) UserCreated(u *User, traceID string) {
	p.publish(EventUserCreated, u, traceID)
}

// UserUpdated publishes a USER_UPDATED event.
func (p *EventPublisher) UserUpdated(u *User, traceID string) {
	p.publish(EventUserUpdated, u, traceID)
}

// UserDeleted publishes a USER_DELETED event.
func (p *EventPublisher) UserDeleted(u *User, traceID string) {
	p.publish(EventUserDeleted, u, traceID)
}

func (p *EventPublisher) publish(name string, u *User, traceID string) {
	if p == nil || p.dispatcher == nil {
		return
	}
	env := audit.NewEnvelope(
		name,
		aggregateType,
		strconv.FormatUint(uint64(u.ID), 10),
		u,
		p.source,
		traceID,
	)
	p.dispatcher.Enqueue(env)
}
