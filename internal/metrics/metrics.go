// Package metrics exposes scoring counters in the Prometheus format.
//
// idensity is a batch tool, so the metrics are written once to a
// node_exporter textfile at the end of a run rather than served.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/ideadensity/internal/scorer"
)

const namespace = "idensity"

// Metrics implements scorer.Observer. It is safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	documents    prometheus.Counter
	sentences    *prometheus.CounterVec
	propositions prometheus.Counter
	words        prometheus.Counter
	decisions    *prometheus.CounterVec
	density      prometheus.Histogram
	length       prometheus.Histogram
}

var _ scorer.Observer = (*Metrics)(nil)

// New creates the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents scored.",
		}),
		sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentences_total",
			Help:      "Sentences scored, by outcome.",
		}, []string{"outcome"}),
		propositions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "propositions_total",
			Help:      "Propositions counted in ok and empty sentences.",
		}),
		words: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "words_total",
			Help:      "Words counted in ok and empty sentences.",
		}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_decisions_total",
			Help:      "Word decisions by deciding rule; only recorded when word detail is kept.",
		}, []string{"rule", "proposition"}),
		density: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_density",
			Help:      "Idea density of documents with at least one word.",
			Buckets:   prometheus.LinearBuckets(0.3, 0.05, 8),
		}),
		length: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sentence_words",
			Help:      "Words per scored sentence.",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 7),
		}),
	}
	m.registry.MustRegister(m.documents, m.sentences, m.propositions, m.words, m.decisions, m.density, m.length)
	for _, o := range []scorer.Outcome{scorer.OutcomeOK, scorer.OutcomeEmpty, scorer.OutcomeError} {
		m.sentences.WithLabelValues(string(o))
	}
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSentence implements scorer.Observer.
func (m *Metrics) ObserveSentence(sr scorer.SentenceResult) {
	m.sentences.WithLabelValues(string(sr.Outcome)).Inc()
	if sr.Outcome == scorer.OutcomeError {
		return
	}
	m.propositions.Add(float64(sr.Ratio.Propositions))
	m.words.Add(float64(sr.Ratio.Words))
	m.length.Observe(float64(sr.Ratio.Words))
	for _, a := range sr.Annotations {
		m.decisions.WithLabelValues(a.Rule.String(), fmt.Sprint(a.Proposition)).Inc()
	}
}

// ObserveText implements scorer.Observer.
func (m *Metrics) ObserveText(res *scorer.Result) {
	m.documents.Inc()
	if v, ok := res.Total.Value(); ok {
		m.density.Observe(v)
	}
}

// WriteTextfile writes the current values atomically to path, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
