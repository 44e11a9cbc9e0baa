package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-wide Prometheus metrics.
type Metrics struct {
	HostsAttached *prometheus.GaugeVec
}

// New creates and registers platform metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		HostsAttached: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "verifybridge_hosts_attached",
			Help: "Host surfaces currently attached, by platform",
		}, []string{"platform"}),
	}
}

// SurfaceAttached records a host attaching.
func (m *Metrics) SurfaceAttached(platform string) {
	m.HostsAttached.WithLabelValues(platform).Inc()
}

// SurfaceDetached records a host detaching. The bridge holds at most one
// surface, so the whole gauge is cleared.
func (m *Metrics) SurfaceDetached() {
	m.HostsAttached.Reset()
}
