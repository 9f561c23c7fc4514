package inventory

import (
	"strconv"

	"github.com/Syafiq-lab/library-management-be/audit"
)

// Event names published by the inventory service.
const (
	EventItemCreated = "ITEM_CREATED"
	EventItemUpdated = "ITEM_UPDATED"
	EventItemDeleted = "ITEM_DELETED"
)

const aggregateType = "INVENTORY_ITEM"

// EventPublisher emits item lifecycle events through the shared async
// dispatcher. Publishing is best-effort and never blocks the request.
type EventPublisher struct {
	dispatcher *audit.Dispatcher
	source     string
}

// NewEventPublisher creates a publisher tagged with the source service name.
func NewEventPublisher(dispatcher *audit.Dispatcher, sourceService string) *EventPublisher {
	return &EventPublisher{dispatcher: dispatcher, source: sourceService}
}

// ItemCreated publishes an ITEM_CREATED event.
func (p *EventPublisher) ItemCreated(item *Item, traceID string) {
	p.publish(EventItemCreated, item, traceID)
}

// ItemUpdated publishes an ITEM_UPDATED event.
func (p *EventPublisher) ItemUpdated(item *Item, traceID string) {
	p.publish(EventItemUpdated, item, traceID)
}

// ItemDeleted publishes an ITEM_DELETED event.
func (p *EventPublisher) ItemDeleted(item *Item, traceID string) {
	p.publish(EventItemDeleted, item, traceID)
}

func (p *EventPublisher) publish(name string, item *Item, traceID string) {
	if p == nil || p.dispatcher == nil {
		return
	}
	env := audit.NewEnvelope(
		name,
		aggregateType,
		strconv.FormatUint(uint64(item.ID), 10),
		item,
		p.source,
		traceID,
	)
	p.dispatcher.Enqueue(env)
}
