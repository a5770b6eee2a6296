// Package metrics exposes the annotator's runtime counters as Prometheus
// metrics, registered the same way the teacher's internal/metrics package
// wires its BFD session gauges: a single Collector holding pre-constructed
// vectors, handed a *prometheus.Registry at construction time rather than
// relying on the global default registry.
package metrics

import (
	"github.com/packetops/opsinject/internal/ops"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds every metric the daemon publishes.
type Collector struct {
	packetsSeen      prometheus.Counter
	verdicts         *prometheus.CounterVec
	decodeFailures   prometheus.Counter
	checksumFailures prometheus.Counter
	blobSize         prometheus.Histogram
}

// NewCollector builds a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		packetsSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "opsinject",
			Name:      "packets_seen_total",
			Help:      "Total number of IPv4 packets read off the NFQUEUE.",
		}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsinject",
			Name:      "verdicts_total",
			Help:      "Total verdicts issued, partitioned by kind.",
		}, []string{"action"}),
		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "opsinject",
			Name:      "decode_failures_total",
			Help:      "Total packets left unchanged because the options recipe failed to decode.",
		}),
		checksumFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "opsinject",
			Name:      "checksum_failures_total",
			Help:      "Total packets left unchanged because checksum recomputation failed.",
		}),
		blobSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "opsinject",
			Name:      "options_blob_bytes",
			Help:      "Size in bytes of the options blob spliced into modified packets.",
			Buckets:   []float64{4, 8, 16, 32, 40, 64, 128, 256, 512, 1024, 4096, 16384, 65535},
		}),
	}

	reg.MustRegister(c.packetsSeen, c.verdicts, c.decodeFailures, c.checksumFailures, c.blobSize)
	return c
}

// Observe records the outcome of one Process call.
func (c *Collector) Observe(v ops.Verdict, blobLen int, decodeErr, checksumErr bool) {
	c.packetsSeen.Inc()
	c.verdicts.WithLabelValues(v.Action.String()).Inc()
	if decodeErr {
		c.decodeFailures.Inc()
	}
	if checksumErr {
		c.checksumFailures.Inc()
	}
	if blobLen > 0 {
		c.blobSize.Observe(float64(blobLen))
	}
}
