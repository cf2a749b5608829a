package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.StatusChanged("Lead", "lead-contacted")
	m.StatusChanged("Lead", "lead-contacted")
	m.TransitionRejected("Lead")
	m.RulesFired("time_based", 2)
	m.RulesFired("time_based", 0)
	m.ActionResolved("create_task")
	m.ActionDispatched("assign_to", "ok")
	m.SweepFinished(150*time.Millisecond, 4)
	m.LintIssues(3)

	assert.InDelta(t, 2, testutil.ToFloat64(m.statusChanges.WithLabelValues("Lead", "lead-contacted")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.transitionsRejected.WithLabelValues("Lead")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.rulesFired.WithLabelValues("time_based")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(m.sweptEntities), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.lintIssues), 0)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.StatusChanged("Lead", "lead-new")
		m.RulesFired("status_change", 1)
		m.SweepFinished(time.Second, 1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ActionResolved("assign_to")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `leadflow_actions_resolved_total{action_type="assign_to"} 1`)
}
