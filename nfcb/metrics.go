package nfcb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the decoder's Prometheus collectors: lock/reset counts, and
// per-dispatch counters split by frame phase and CRC outcome. Registered
// globally via promauto, the same way the pack's web-server metrics are.
type Metrics struct {
	sofLocks prometheus.Counter
	resets   prometheus.Counter

	framesTotal     *prometheus.CounterVec // by phase
	crcErrorsTotal  prometheus.Counter
	truncatedTotal  prometheus.Counter
	frameBytesTotal prometheus.Counter
}

// NewMetrics registers the decoder's collectors with the default registry
// and returns the handle used to update them.
func NewMetrics() *Metrics {
	return &Metrics{
		sofLocks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nfcb_sof_locks_total",
			Help: "Total number of SOF patterns locked onto.",
		}),
		resets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nfcb_resets_total",
			Help: "Total number of times the decoder fell back to SOF search.",
		}),
		framesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nfcb_frames_total",
			Help: "Total number of frames dispatched, by recognized phase.",
		}, []string{"phase"}),
		crcErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nfcb_crc_errors_total",
			Help: "Total number of dispatched frames that failed CRC-B verification.",
		}),
		truncatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nfcb_truncated_frames_total",
			Help: "Total number of frames cut short by the max frame size or a stream error.",
		}),
		frameBytesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nfcb_frame_bytes_total",
			Help: "Total number of payload bytes across all dispatched frames.",
		}),
	}
}

// recordFrame updates the per-dispatch counters for a completed frame.
func (m *Metrics) recordFrame(f Frame) {
	m.framesTotal.WithLabelValues(f.Phase.String()).Inc()
	m.frameBytesTotal.Add(float64(len(f.Data)))
	if f.CrcError() {
		m.crcErrorsTotal.Inc()
	}
	if f.Truncated() {
		m.truncatedTotal.Inc()
	}
}
