package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_QueryProcessed(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.QueryProcessed("github", "fastpath", 10*time.Millisecond)
	m.QueryProcessed("github", "fastpath", 20*time.Millisecond)
	m.QueryProcessed("github", "model", time.Second)

	if got := testutil.ToFloat64(m.QueryCounter.WithLabelValues("github", "fastpath")); got != 2 {
		t.Errorf("fastpath count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.QueryCounter.WithLabelValues("github", "model")); got != 1 {
		t.Errorf("model count = %v, want 1", got)
	}
}

func TestMetrics_TagOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.TagOutcome("github", "success")
	m.TagOutcome("github", "malformed")
	m.TagOutcome("github", "success")

	if got := testutil.ToFloat64(m.TagCounter.WithLabelValues("github", "success")); got != 2 {
		t.Errorf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TagCounter.WithLabelValues("github", "malformed")); got != 1 {
		t.Errorf("malformed count = %v, want 1", got)
	}
}

func TestMetrics_ToolExecutionStatus(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ToolExecution("slack", "send_message", 50*time.Millisecond, true)
	m.ToolExecution("slack", "send_message", 50*time.Millisecond, false)

	if got := testutil.ToFloat64(m.ToolCounter.WithLabelValues("slack", "send_message", "success")); got != 1 {
		t.Errorf("success count = %v", got)
	}
	if got := testutil.ToFloat64(m.ToolCounter.WithLabelValues("slack", "send_message", "error")); got != 1 {
		t.Errorf("error count = %v", got)
	}
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics

	m.QueryProcessed("github", "fastpath", time.Millisecond)
	m.TagOutcome("github", "success")
	m.ToolExecution("slack", "send_message", time.Millisecond, true)
	m.ModelCompletion("github", time.Second, false)
}

func TestNewMetrics_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.QueryProcessed("github", "model", time.Second)
	m.ModelCompletion("github", time.Second, true)

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"parley_queries_total",
		"parley_query_duration_seconds",
		"parley_model_completions_total",
		"parley_model_completion_duration_seconds",
	} {
		if !names[want] {
			t.Errorf("metric %s not gathered", want)
		}
	}
}
