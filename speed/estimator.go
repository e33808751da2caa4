// Package speed estimates a candidate's speed from the vertical extent of its
// bounding box and rates the result against the speed limit.
package speed

import "math"

const (
	// DefaultSmoothing is the weight of the newest raw measurement.
	DefaultSmoothing = 0.7
	// DefaultMinSpeed is the speed in mph below which readings are noise.
	DefaultMinSpeed = 10.0
)

// Estimator turns the vertical extent of a candidate into an exponentially
// smoothed speed in mph. The previous smoothed value starts at zero.
//
// Not safe for concurrent use; the pipeline owns a single instance.
type Estimator struct {
	smoothing float64
	previous  float64
}

// NewEstimator returns an estimator with the given weight for new samples.
// A weight outside (0, 1] falls back to DefaultSmoothing.
func NewEstimator(smoothing float64) *Estimator {
	if smoothing <= 0 || smoothing > 1 {
		smoothing = DefaultSmoothing
	}
	return &Estimator{smoothing: smoothing}
}

// Raw computes the unsmoothed speed in mph.
//
//	pixels = |exitY - entryY|
//	meters = pixels / pxPerMeter
//	mph    = meters / frameTime * 2.23694
//
// Arguments:
//   - entryY, exitY: Top and bottom of the candidate box in pixels.
//   - frameTime: Seconds elapsed since the previous frame.
//   - pxPerMeter: Current effective scale factor.
func Raw(entryY, exitY int, frameTime, pxPerMeter float64) float64 {
	pixels := math.Abs(float64(exitY - entryY))
	meters := pixels / pxPerMeter
	return ToMPH(meters / frameTime)
}

// Estimate computes the raw speed and folds it into the smoothed value.
//
// Arguments:
//   - entryY, exitY: Top and bottom of the candidate box in pixels.
//   - frameTime: Seconds elapsed since the previous frame.
//   - pxPerMeter: Current effective scale factor.
//
// Returns:
//   - float64: smoothing*raw + (1-smoothing)*previous, which becomes the new previous.
func (e *Estimator) Estimate(entryY, exitY int, frameTime, pxPerMeter float64) float64 {
	return e.Smooth(Raw(entryY, exitY, frameTime, pxPerMeter))
}

// Smooth folds a raw measurement into the smoothed value and returns it.
func (e *Estimator) Smooth(raw float64) float64 {
	e.previous = e.smoothing*raw + (1-e.smoothing)*e.previous
	return e.previous
}

// Last returns the most recent smoothed speed.
func (e *Estimator) Last() float64 {
	return e.previous
}

// Reset clears the smoothing history.
func (e *Estimator) Reset() {
	e.previous = 0
}
