package audit

import (
	"context"
	"sync"
	"time"

	"github.com/Syafiq-lab/library-management-be/logger"
)

// Dispatcher decouples event publishing from the request path. Enqueue never
// blocks: events go into a bounded channel drained by a background worker,
// and when the queue is full the event is dropped and logged. Publish
// failures are logged, never surfaced.
type Dispatcher struct {
	publisher Publisher
	queue     chan Envelope
	log       *logger.Logger

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewDispatcher starts a dispatcher with the given queue capacity.
func NewDispatcher(publisher Publisher, queueSize int, log *logger.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	d := &Dispatcher{
		publisher: publisher,
		queue:     make(chan Envelope, queueSize),
		log:       log.WithComponent("audit.dispatcher"),
		done:      make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue hands an envelope to the background worker. It returns immediately
// whether or not the event could be queued.
func (d *Dispatcher) Enqueue(env Envelope) {
	select {
	case d.queue <- env:
	default:
		d.log.Warn("audit queue full, dropping event", map[string]interface{}{
			"event_name": env.EventName,
			"trace_id":   env.TraceID,
		})
	}
}

// Close stops the worker after draining queued events.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
		d.wg.Wait()
	})
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case env := <-d.queue:
			d.publish(env)
		case <-d.done:
			// Drain whatever is left, then stop.
			for {
				select {
				case env := <-d.queue:
					d.publish(env)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) publish(env Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.publisher.Publish(ctx, env); err != nil {
		d.log.Error("failed to publish event", map[string]interface{}{
			"event_name": env.EventName,
			"trace_id":   env.TraceID,
			"error":      err.Error(),
		})
	}
}
