package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordTaskProcessed(t *testing.T) {
	m := NewMetrics()
	m.RecordTaskProcessed("escalate_ticket", "ok")
	m.RecordTaskProcessed("escalate_ticket", "ok")
	m.RecordTaskProcessed("escalate_ticket", "error")

	ok := testutil.ToFloat64(m.tasksProcessed.WithLabelValues("escalate_ticket", "ok"))
	if ok != 2 {
		t.Fatalf("ok count = %v, want 2", ok)
	}
	failed := testutil.ToFloat64(m.tasksProcessed.WithLabelValues("escalate_ticket", "error"))
	if failed != 1 {
		t.Fatalf("error count = %v, want 1", failed)
	}
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/tickets", "GET", 200, time.Millisecond)
	m.RecordError("/tickets", "GET", "VALIDATION_FAILED")
	m.RecordEscalationOutcome("escalated")
	m.RecordTaskScheduled()
	m.RecordTaskProcessed("escalate_ticket", "ok")
	if m.Registry() == nil {
		t.Fatalf("nil metrics must still expose a registry")
	}
}
