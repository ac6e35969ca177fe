// Package metric provides optional, non-secret observability counters for
// the note encryption core. Only counts are exposed — no latencies — so
// that exporting metrics cannot become a timing side channel on key
// material (see the note encryption core's constant-time requirements).
package metric

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters emitted by the note encryption engine.
type Metrics struct {
	registry *prometheus.Registry

	DecryptAttempts *prometheus.CounterVec
	DecryptSuccess  *prometheus.CounterVec

	EncryptNoteTotal     prometheus.Counter
	EncryptOutgoingTotal prometheus.Counter
}

// NewMetrics creates a new, independently registered Metrics instance.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		DecryptAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noteenc_decrypt_attempts_total",
			Help: "Total number of trial decryption attempts, by entrypoint.",
		}, []string{"entrypoint"}),
		DecryptSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noteenc_decrypt_success_total",
			Help: "Total number of successful trial decryptions, by entrypoint.",
		}, []string{"entrypoint"}),
		EncryptNoteTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noteenc_encrypt_note_total",
			Help: "Total number of note ciphertexts produced.",
		}),
		EncryptOutgoingTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noteenc_encrypt_outgoing_total",
			Help: "Total number of outgoing ciphertexts produced.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.DecryptAttempts, m.DecryptSuccess, m.EncryptNoteTotal, m.EncryptOutgoingTotal,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordDecryptAttempt records that entrypoint was invoked, and whether it
// succeeded. It never receives key material or timing information.
func (m *Metrics) RecordDecryptAttempt(entrypoint string, ok bool) {
	if m == nil {
		return
	}
	m.DecryptAttempts.WithLabelValues(entrypoint).Inc()
	if ok {
		m.DecryptSuccess.WithLabelValues(entrypoint).Inc()
	}
}

// Gatherer returns the prometheus gatherer backing this Metrics instance.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Registerer returns the prometheus registerer backing this Metrics instance.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}
