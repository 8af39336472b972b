package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects Prometheus counters and histograms for the query
// pipeline. All methods are safe on a nil receiver so components can treat
// metrics as optional.
type Metrics struct {
	// QueryCounter counts processed queries.
	// Labels: agent, path (fastpath|model|error)
	QueryCounter *prometheus.CounterVec

	// QueryDuration measures end-to-end query latency in seconds.
	// Labels: agent, path
	QueryDuration *prometheus.HistogramVec

	// TagCounter counts invocation-tag outcomes.
	// Labels: agent, outcome (success|malformed|unknown_tool|unknown_action|missing_params|execution_error)
	TagCounter *prometheus.CounterVec

	// ToolCounter counts tool action executions.
	// Labels: tool, action, status (success|error)
	ToolCounter *prometheus.CounterVec

	// ToolDuration measures tool execution latency in seconds.
	// Labels: tool, action
	ToolDuration *prometheus.HistogramVec

	// CompletionCounter counts model-completion calls.
	// Labels: agent, status (success|error)
	CompletionCounter *prometheus.CounterVec

	// CompletionDuration measures model-completion latency in seconds.
	// Labels: agent
	CompletionDuration *prometheus.HistogramVec
}

// NewMetrics creates the pipeline metrics and registers them with the given
// registerer. Pass prometheus.DefaultRegisterer for the standard /metrics
// endpoint, or a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueryCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_queries_total",
			Help: "Total queries processed by agent and path",
		}, []string{"agent", "path"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parley_query_duration_seconds",
			Help:    "End-to-end query processing latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"agent", "path"}),
		TagCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_invocation_tags_total",
			Help: "Invocation-tag outcomes by kind",
		}, []string{"agent", "outcome"}),
		ToolCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_tool_executions_total",
			Help: "Tool action executions by status",
		}, []string{"tool", "action", "status"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parley_tool_execution_duration_seconds",
			Help:    "Tool action execution latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"tool", "action"}),
		CompletionCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_model_completions_total",
			Help: "Model-completion calls by status",
		}, []string{"agent", "status"}),
		CompletionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parley_model_completion_duration_seconds",
			Help:    "Model-completion call latency",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"agent"}),
	}
	reg.MustRegister(
		m.QueryCounter, m.QueryDuration,
		m.TagCounter,
		m.ToolCounter, m.ToolDuration,
		m.CompletionCounter, m.CompletionDuration,
	)
	return m
}

// QueryProcessed records one processed query.
func (m *Metrics) QueryProcessed(agent, path string, d time.Duration) {
	if m == nil {
		return
	}
	m.QueryCounter.WithLabelValues(agent, path).Inc()
	m.QueryDuration.WithLabelValues(agent, path).Observe(d.Seconds())
}

// TagOutcome records the outcome kind of one invocation tag.
func (m *Metrics) TagOutcome(agent, outcome string) {
	if m == nil {
		return
	}
	m.TagCounter.WithLabelValues(agent, outcome).Inc()
}

// ToolExecution records one tool action execution.
func (m *Metrics) ToolExecution(tool, action string, d time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.ToolCounter.WithLabelValues(tool, action, statusLabel(ok)).Inc()
	m.ToolDuration.WithLabelValues(tool, action).Observe(d.Seconds())
}

// ModelCompletion records one model-completion call.
func (m *Metrics) ModelCompletion(agent string, d time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.CompletionCounter.WithLabelValues(agent, statusLabel(ok)).Inc()
	m.CompletionDuration.WithLabelValues(agent).Observe(d.Seconds())
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
