package metrics

import "github.com/prometheus/client_golang/prometheus"

// InterviewMetrics exposes counters/histograms for the interview engine.
// All observe methods are nil-safe so wiring metrics stays optional.
type InterviewMetrics struct {
	turnsTotal       *prometheus.CounterVec
	routingTotal     *prometheus.CounterVec
	finishTotal      *prometheus.CounterVec
	followUpsTotal   prometheus.Counter
	selectionLatency *prometheus.HistogramVec
	selectionErrors  *prometheus.CounterVec
	completenessHist prometheus.Histogram
}

func NewInterviewMetrics(reg prometheus.Registerer) *InterviewMetrics {
	m := &InterviewMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadlens",
			Subsystem: "interview",
			Name:      "turns_total",
			Help:      "Total interview turns processed",
		}, []string{"status"}),
		routingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadlens",
			Subsystem: "interview",
			Name:      "routing_decisions_total",
			Help:      "Next-question routing decisions by source",
		}, []string{"source"}),
		finishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadlens",
			Subsystem: "interview",
			Name:      "finishes_total",
			Help:      "Completed interviews by finish reason",
		}, []string{"reason"}),
		followUpsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leadlens",
			Subsystem: "interview",
			Name:      "follow_ups_total",
			Help:      "Generated follow-up questions asked",
		}),
		selectionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadlens",
			Subsystem: "llm",
			Name:      "selection_latency_seconds",
			Help:      "Latency of language-model selection calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		selectionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadlens",
			Subsystem: "llm",
			Name:      "selection_errors_total",
			Help:      "Failed or rejected language-model calls",
		}, []string{"kind", "cause"}),
		completenessHist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadlens",
			Subsystem: "interview",
			Name:      "final_completeness_score",
			Help:      "Completeness score at interview finish",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.turnsTotal, m.routingTotal, m.finishTotal, m.followUpsTotal,
		m.selectionLatency, m.selectionErrors, m.completenessHist,
	)
	return m
}

func (m *InterviewMetrics) ObserveTurn(status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(status).Inc()
}

func (m *InterviewMetrics) ObserveRouting(source string) {
	if m == nil {
		return
	}
	m.routingTotal.WithLabelValues(source).Inc()
}

func (m *InterviewMetrics) ObserveFinish(reason string, score int) {
	if m == nil {
		return
	}
	m.finishTotal.WithLabelValues(reason).Inc()
	m.completenessHist.Observe(float64(score))
}

func (m *InterviewMetrics) ObserveFollowUp() {
	if m == nil {
		return
	}
	m.followUpsTotal.Inc()
}

func (m *InterviewMetrics) ObserveSelectionLatency(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.selectionLatency.WithLabelValues(kind).Observe(seconds)
}

func (m *InterviewMetrics) ObserveSelectionError(kind, cause string) {
	if m == nil {
		return
	}
	m.selectionErrors.WithLabelValues(kind, cause).Inc()
}
