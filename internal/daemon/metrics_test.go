package daemon

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.IncEventsSent()
	m.IncEventsSent()
	m.IncEventsReceived()
	m.IncEventsDropped()
	m.IncBroadcasts()
	m.SetConnectedClients(4)

	snap := m.GetSnapshot()
	assert.Equal(t, int64(2), snap.EventsSent)
	assert.Equal(t, int64(1), snap.EventsReceived)
	assert.Equal(t, int64(1), snap.EventsDropped)
	assert.Equal(t, int64(1), snap.BroadcastsTotal)
	assert.Equal(t, int32(4), snap.ConnectedClients)
	assert.Equal(t, m.StartTime, snap.StartTime)
	assert.NotEmpty(t, snap.Uptime)
}

func TestMetrics_Concurrency(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	const goroutines, iterations = 20, 500

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				m.IncEventsSent()
				m.IncBroadcasts()
				_ = m.GetSnapshot()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(goroutines*iterations), m.EventsSent.Load())
	assert.Equal(t, int64(goroutines*iterations), m.BroadcastsTotal.Load())
}

func TestMetricsSnapshot_IsImmutable(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.IncEventsSent()
	snap := m.GetSnapshot()
	m.IncEventsSent()

	assert.Equal(t, int64(1), snap.EventsSent)
}
