package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Syafiq-lab/library-management-be/audit"
	"github.com/Syafiq-lab/library-management-be/logger"
	"github.com/Syafiq-lab/library-management-be/middleware"
)

type recordingPublisher struct {
	mu        sync.Mutex
	envelopes []audit.Envelope
}

func (p *recordingPublisher) Publish(_ context.Context, env audit.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envelopes = append(p.envelopes, env)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestAuditTrailRecordsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pub := &recordingPublisher{}
	dispatcher := audit.NewDispatcher(pub, 8, logger.NewDefault("test"))

	r := gin.New()
	r.Use(middleware.TraceID())
	r.Use(AuditTrail(dispatcher, "gateway"))
	r.GET("/api/users", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set(middleware.TraceIDHeader, "trace-audit-1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/missing", nil))

	dispatcher.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.envelopes) != 2 {
		t.Fatalf("published %d envelopes, want 2", len(pub.envelopes))
	}

	first := pub.envelopes[0]
	if first.EventName != "AUDIT_HTTP_CALL" {
		t.Errorf("event name = %q", first.EventName)
	}
	if first.TraceID != "trace-audit-1" {
		t.Errorf("trace id = %q, want trace-audit-1", first.TraceID)
	}
	ev, ok := first.Payload.(audit.Event)
	if !ok {
		t.Fatalf("payload type = %T, want audit.Event", first.Payload)
	}
	if ev.Method != http.MethodGet || ev.Path != "/api/users" || ev.StatusCode != http.StatusOK {
		t.Errorf("event = %+v", ev)
	}
	if ev.Timestamp.IsZero() || time.Since(ev.Timestamp) > time.Minute {
		t.Errorf("timestamp = %v", ev.Timestamp)
	}

	second, ok := pub.envelopes[1].Payload.(audit.Event)
	if !ok {
		t.Fatalf("payload type = %T", pub.envelopes[1].Payload)
	}
	if second.StatusCode != http.StatusNotFound {
		t.Errorf("second status = %d, want 404", second.StatusCode)
	}
	if second.TraceID == "" {
		t.Error("generated trace id missing from audit event")
	}
}

func TestAuditTrailNilDispatcher(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.TraceID())
	r.Use(AuditTrail(nil, "gateway"))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
