package speed

import (
	"sync/atomic"
	"time"
)

// Gauge publishes the latest surfaced speed to any number of readers.
// There is a single writer, the pipeline; readers may lag by one store.
type Gauge struct {
	value atomic.Pointer[gaugeValue]
}

type gaugeValue struct {
	mph float64
	at  time.Time
}

// Store records mph as the current speed.
func (g *Gauge) Store(mph float64, at time.Time) {
	g.value.Store(&gaugeValue{mph: mph, at: at})
}

// Load returns the current speed and when it was stored.
// A gauge that was never written returns zero values.
func (g *Gauge) Load() (float64, time.Time) {
	v := g.value.Load()
	if v == nil {
		return 0, time.Time{}
	}
	return v.mph, v.at
}

// Reset clears the gauge.
func (g *Gauge) Reset() {
	g.value.Store(nil)
}
