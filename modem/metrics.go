package modem

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Message outcomes recorded by Metrics.
const (
	ResultDecoded       = "decoded"
	ResultUncorrectable = "uncorrectable"
	ResultFailed        = "failed"
	ResultTimeout       = "timeout"
)

// Metrics holds the Prometheus collectors for a receiver.
// All methods are safe on a nil *Metrics.
type Metrics struct {
	syncAttempts       prometheus.Counter   // Synchronize calls
	syncFound          prometheus.Counter   // calibration patterns located
	syncTimeouts       prometheus.Counter   // scans that exhausted the budget or stream
	scannedSamples     prometheus.Histogram // samples scanned per Synchronize call
	wordsDecoded       prometheus.Counter   // data words decoded
	confidenceErrors   prometheus.Counter   // words rejected by the decoder
	resyncs            prometheus.Counter   // re-synchronization attempts
	messages           *prometheus.CounterVec
	calibrationMissing prometheus.Counter // trailer words with missing triggers
}

// NewMetrics registers the receiver collectors with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		syncAttempts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tonelink",
			Subsystem: "sync",
			Name:      "attempts_total",
			Help:      "Number of synchronization scans started",
		}),
		syncFound: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tonelink",
			Subsystem: "sync",
			Name:      "found_total",
			Help:      "Number of calibration patterns located",
		}),
		syncTimeouts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tonelink",
			Subsystem: "sync",
			Name:      "timeouts_total",
			Help:      "Number of scans that ended without a calibration pattern",
		}),
		scannedSamples: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tonelink",
			Subsystem: "sync",
			Name:      "scanned_samples",
			Help:      "Samples scanned per synchronization",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		wordsDecoded: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tonelink",
			Subsystem: "decoder",
			Name:      "words_total",
			Help:      "Number of data words decoded",
		}),
		confidenceErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tonelink",
			Subsystem: "decoder",
			Name:      "confidence_errors_total",
			Help:      "Number of data words rejected for low symbol confidence",
		}),
		resyncs: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tonelink",
			Subsystem: "decoder",
			Name:      "resyncs_total",
			Help:      "Number of re-synchronization attempts after a rejected word",
		}),
		calibrationMissing: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tonelink",
			Subsystem: "decoder",
			Name:      "trailer_mismatches_total",
			Help:      "Number of trailer words with missing trigger tones",
		}),
		messages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tonelink",
			Subsystem: "receiver",
			Name:      "messages_total",
			Help:      "Number of messages by outcome",
		}, []string{"result"}),
	}
}

func (m *Metrics) syncStarted() {
	if m != nil {
		m.syncAttempts.Inc()
	}
}

func (m *Metrics) syncEnded(found bool, scanned int64) {
	if m == nil {
		return
	}
	if found {
		m.syncFound.Inc()
	} else {
		m.syncTimeouts.Inc()
	}
	m.scannedSamples.Observe(float64(scanned))
}

func (m *Metrics) wordDecoded() {
	if m != nil {
		m.wordsDecoded.Inc()
	}
}

func (m *Metrics) wordRejected() {
	if m != nil {
		m.confidenceErrors.Inc()
	}
}

func (m *Metrics) resynced() {
	if m != nil {
		m.resyncs.Inc()
	}
}

func (m *Metrics) trailerMismatch() {
	if m != nil {
		m.calibrationMissing.Inc()
	}
}

func (m *Metrics) message(result string) {
	if m != nil {
		m.messages.WithLabelValues(result).Inc()
	}
}
