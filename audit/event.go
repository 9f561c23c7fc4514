// Package audit builds and publishes the audit trail emitted at the edge.
// Events are wrapped in a generic envelope shared by every publisher in the
// deployment and handed to an asynchronous dispatcher: publishing is a
// best-effort side channel that never blocks or fails the original request.
package audit

import (
	"net/http"
	"time"
)

// Event status values.
const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// Event is the audit record created once per inbound edge request.
type Event struct {
	TraceID    string    `json:"traceId"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"statusCode"`
	Timestamp  time.Time `json:"timestamp"`
}

// Envelope is the generic wrapper used for publishing domain events.
type Envelope struct {
	EventName     string      `json:"eventName"`
	AggregateType string      `json:"aggregateType"`
	AggregateID   string      `json:"aggregateId,omitempty"`
	Status        string      `json:"status"`
	Code          int         `json:"code"`
	Message       string      `json:"message"`
	Payload       interface{} `json:"payload"`
	CreatedAt     time.Time   `json:"createdAt"`
	SourceService string      `json:"sourceService"`
	TraceID       string      `json:"traceId,omitempty"`
}

// NewEnvelope wraps a payload in a success envelope.
func NewEnvelope(eventName, aggregateType, aggregateID string, payload interface{}, sourceService, traceID string) Envelope {
	return Envelope{
		EventName:     eventName,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Status:        StatusSuccess,
		Code:          http.StatusOK,
		Message:       "OK",
		Payload:       payload,
		CreatedAt:     time.Now(),
		SourceService: sourceService,
		TraceID:       traceID,
	}
}

// NewHTTPCallEnvelope wraps an audit Event for the gateway's per-request
// audit trail.
func NewHTTPCallEnvelope(ev Event, sourceService string) Envelope {
	env := NewEnvelope("AUDIT_HTTP_CALL", "GATEWAY", "", ev, sourceService, ev.TraceID)
	env.Message = "HTTP request audited"
	return env
}
