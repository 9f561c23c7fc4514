package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Syafiq-lab/library-management-be/logger"
)

type capturePublisher struct {
	mu        sync.Mutex
	published []Envelope
	fail      bool
	block     chan struct{}
}

func (p *capturePublisher) Publish(_ context.Context, env Envelope) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.published = append(p.published, env)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func TestDispatcherPublishesEnqueued(t *testing.T) {
	pub := &capturePublisher{}
	d := NewDispatcher(pub, 8, logger.NewDefault("test"))

	for i := 0; i < 5; i++ {
		d.Enqueue(NewEnvelope("TEST_EVENT", "TEST", "1", nil, "test", "trace-1"))
	}
	d.Close()

	if got := pub.count(); got != 5 {
		t.Errorf("published %d events, want 5", got)
	}
}

func TestDispatcherDrainsOnClose(t *testing.T) {
	pub := &capturePublisher{block: make(chan struct{})}
	d := NewDispatcher(pub, 8, logger.NewDefault("test"))

	for i := 0; i < 4; i++ {
		d.Enqueue(NewEnvelope("TEST_EVENT", "TEST", "1", nil, "test", "trace-2"))
	}
	// Unblock the publisher, then close; close must wait for the drain.
	close(pub.block)
	d.Close()

	if got := pub.count(); got != 4 {
		t.Errorf("published %d events after close, want 4", got)
	}
}

func TestDispatcherEnqueueNeverBlocks(t *testing.T) {
	// A publisher that never completes fills the queue; Enqueue must still
	// return promptly, dropping the overflow.
	pub := &capturePublisher{block: make(chan struct{})}
	d := NewDispatcher(pub, 2, logger.NewDefault("test"))
	defer close(pub.block)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			d.Enqueue(NewEnvelope("TEST_EVENT", "TEST", "1", nil, "test", "trace-3"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}

func TestDispatcherSurvivesPublishFailure(t *testing.T) {
	pub := &capturePublisher{fail: true}
	d := NewDispatcher(pub, 8, logger.NewDefault("test"))

	d.Enqueue(NewEnvelope("TEST_EVENT", "TEST", "1", nil, "test", "trace-4"))
	d.Close()
	// No panic and no error surfaced: failure is logged only.
}

func TestHTTPCallEnvelopeShape(t *testing.T) {
	ev := Event{
		TraceID:    "trace-5",
		Method:     "GET",
		Path:       "/api/items",
		StatusCode: 200,
		Timestamp:  time.Now(),
	}
	env := NewHTTPCallEnvelope(ev, "gateway")

	if env.EventName != "AUDIT_HTTP_CALL" {
		t.Errorf("event name = %q", env.EventName)
	}
	if env.AggregateType != "GATEWAY" {
		t.Errorf("aggregate type = %q", env.AggregateType)
	}
	if env.TraceID != "trace-5" {
		t.Errorf("trace id = %q", env.TraceID)
	}
	if env.SourceService != "gateway" {
		t.Errorf("source service = %q", env.SourceService)
	}
	if env.Status != StatusSuccess {
		t.Errorf("status = %q", env.Status)
	}
}
