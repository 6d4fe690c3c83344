package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics tracks push dispatch volume and failures per category.
type DispatchMetrics struct {
	sent      *prometheus.CounterVec
	failures  *prometheus.CounterVec
	batchSize *prometheus.HistogramVec
}

// NewDispatchMetrics registers the dispatcher metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "push_messages_sent_total",
		Help: "Push platform calls issued, per category and mode.",
	}, []string{"category", "mode"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "push_send_failures_total",
		Help: "Push platform calls rejected, per category and mode.",
	}, []string{"category", "mode"})
	batchSize := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "push_batch_tokens",
		Help:    "Token count per multicast batch.",
		Buckets: []float64{1, 5, 10, 50, 100, 250, 500},
	}, []string{"category"})
	reg.MustRegister(sent, failures, batchSize)
	return &DispatchMetrics{
		sent:      sent,
		failures:  failures,
		batchSize: batchSize,
	}
}

// IncSent counts one accepted push platform call.
func (d *DispatchMetrics) IncSent(category, mode string) {
	if d == nil || d.sent == nil {
		return
	}
	d.sent.WithLabelValues(normalizeLabel(category), normalizeLabel(mode)).Inc()
}

// IncFailure counts one rejected push platform call.
func (d *DispatchMetrics) IncFailure(category, mode string) {
	if d == nil || d.failures == nil {
		return
	}
	d.failures.WithLabelValues(normalizeLabel(category), normalizeLabel(mode)).Inc()
}

// ObserveBatchSize records the token count of one multicast batch.
func (d *DispatchMetrics) ObserveBatchSize(category string, tokens int) {
	if d == nil || d.batchSize == nil {
		return
	}
	d.batchSize.WithLabelValues(normalizeLabel(category)).Observe(float64(tokens))
}
