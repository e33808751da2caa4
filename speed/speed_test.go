package speed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaw_ReferenceScenario(t *testing.T) {
	raw := Raw(100, 150, 0.1, 2022.5)

	// 50 px / 2022.5 px/m = 0.02472 m over 0.1 s
	assert.InDelta(t, 0.55301, raw, 1e-4)
	assert.Equal(t, raw, Raw(150, 100, 0.1, 2022.5), "direction does not matter")
}

func TestEstimator_FirstSmoothing(t *testing.T) {
	e := NewEstimator(DefaultSmoothing)

	smoothed := e.Estimate(100, 150, 0.1, 2022.5)

	assert.InDelta(t, 0.38711, smoothed, 1e-4)
	assert.Less(t, smoothed, DefaultMinSpeed, "reference scenario is below the gate")
	assert.Equal(t, smoothed, e.Last())
}

func TestEstimator_Recurrence(t *testing.T) {
	raws := []float64{20, 35, 0, 12.5, 80, 80, 80}

	e := NewEstimator(DefaultSmoothing)
	expected := 0.0
	for i, r := range raws {
		expected = 0.7*r + 0.3*expected
		got := e.Smooth(r)
		require.InDelta(t, expected, got, 1e-12, "sample %d", i)
	}

	e.Reset()
	assert.Equal(t, 0.0, e.Last())
	assert.InDelta(t, 14.0, e.Smooth(20), 1e-12)
}

func TestNewEstimator_InvalidWeight(t *testing.T) {
	for _, w := range []float64{0, -1, 1.5} {
		e := NewEstimator(w)
		assert.InDelta(t, DefaultSmoothing*10, e.Smooth(10), 1e-12, "weight %v", w)
	}
}

func TestConvert(t *testing.T) {
	assert.InDelta(t, 2.23694, ToMPH(1), 1e-12)
	assert.InDelta(t, 16.0934, ToKMH(10), 1e-12)
	assert.InDelta(t, 16.0934, Convert(10, KMH), 1e-12)
	assert.InDelta(t, 10, Convert(10, MPH), 1e-12)
	assert.InDelta(t, 1, Convert(2.23694, MPS), 1e-12)
	assert.InDelta(t, 10, Convert(10, "furlongs"), 1e-12)
}

func TestValidUnit(t *testing.T) {
	for _, u := range []string{"mph", "kmh", "mps"} {
		assert.True(t, ValidUnit(u), u)
	}
	for _, u := range []string{"", "MPH", "kph", "knots"} {
		assert.False(t, ValidUnit(u), u)
	}
}

func TestThresholds_Classify(t *testing.T) {
	th := Thresholds{Limit: 35, Warn: 5, Danger: 10}

	tests := []struct {
		mph      float64
		expected Band
	}{
		{mph: 0, expected: BandNormal},
		{mph: 39.9, expected: BandNormal},
		{mph: 40, expected: BandWarning},
		{mph: 44.9, expected: BandWarning},
		{mph: 45, expected: BandDanger},
		{mph: 90, expected: BandDanger},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, th.Classify(tt.mph), "mph=%v", tt.mph)
		})
	}
}

func TestGauge(t *testing.T) {
	var g Gauge

	mph, at := g.Load()
	assert.Zero(t, mph)
	assert.True(t, at.IsZero())

	now := time.Now()
	g.Store(42.5, now)
	mph, at = g.Load()
	assert.Equal(t, 42.5, mph)
	assert.Equal(t, now, at)

	g.Reset()
	mph, _ = g.Load()
	assert.Zero(t, mph)
}

func TestGauge_ConcurrentReaders(t *testing.T) {
	var g Gauge
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 1000; i++ {
			g.Store(float64(i), time.Time{})
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			last := 0.0
			for i := 0; i < 1000; i++ {
				mph, _ := g.Load()
				assert.GreaterOrEqual(t, mph, last, "single writer stores are monotonic here")
				last = mph
			}
		}()
	}

	wg.Wait()
	mph, _ := g.Load()
	assert.Equal(t, 1000.0, mph)
}
