package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHostsAttached(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SurfaceAttached("Chrome on Android")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HostsAttached.WithLabelValues("Chrome on Android")))

	m.SurfaceDetached()
	assert.Equal(t, 0, testutil.CollectAndCount(m.HostsAttached))
}
