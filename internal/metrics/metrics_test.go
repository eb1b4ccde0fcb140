package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, "livediff")

	c.Dispatched()
	c.Dispatched()
	c.Dropped()
	c.Result(OutcomePublished)
	c.Result(OutcomeStale)
	c.Result(OutcomeStale)
	c.ObserveCompute(3 * time.Millisecond)
	c.PairingOpened()
	c.PairingOpened()
	c.PairingClosed()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.dispatched))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.results.WithLabelValues(OutcomePublished)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.results.WithLabelValues(OutcomeStale)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.pairings))

	count, err := testutil.GatherAndCount(reg, "livediff_diff_compute_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.Dispatched()
		c.Dropped()
		c.Result(OutcomeAborted)
		c.ObserveCompute(time.Second)
		c.PairingOpened()
		c.PairingClosed()
	})
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg, "livediff")
	assert.Panics(t, func() { New(reg, "livediff") })
}
