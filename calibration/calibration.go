// Package calibration converts observed vehicle widths into a distance from
// the camera and rescales the pixel-per-meter factor for that distance.
//
// The reference width is a single assumed vehicle width (1.8 m by default)
// applied to every detection. Motorcycles and trucks are measured against
// the same width, so their distances, and the speeds derived from them, are
// approximate.
package calibration

import (
	"math"
)

const (
	// DefaultReferenceDistance is the distance in meters at which the
	// reference ratio was measured (2 ft).
	DefaultReferenceDistance = 0.6096
	// DefaultReferencePxPerMeter is the pixel-per-meter ratio measured at
	// DefaultReferenceDistance.
	DefaultReferencePxPerMeter = 2022.5
	// DefaultReferenceWidth is the assumed real-world vehicle width in meters.
	DefaultReferenceWidth = 1.8
	// MaxDistance bounds the distance estimates that may rescale the factor.
	// Anything at or beyond it is treated as noise.
	MaxDistance = 50.0
)

// Calibration holds the fixed reference measurement and the current
// effective pixel-per-meter factor.
type Calibration struct {
	// ReferenceDistance is the calibration distance in meters.
	ReferenceDistance float64
	// ReferencePxPerMeter is the ratio measured at ReferenceDistance.
	ReferencePxPerMeter float64
	// ReferenceWidth is the assumed object width in meters.
	ReferenceWidth float64
	// PxPerMeter is the current effective scale factor.
	PxPerMeter float64
}

// New returns a calibration whose effective factor starts at the reference ratio.
//
// Arguments:
//   - distance: Reference distance in meters.
//   - pxPerMeter: Reference ratio measured at distance.
//   - width: Assumed object width in meters.
//
// Returns:
//   - *Calibration: The calibration state.
//
// @example
// cal := calibration.New(0.6096, 2022.5, 1.8)
// d := cal.EstimateDistance(400) // ~5.548 m
// cal.Adjust(d)                  // PxPerMeter ~222.2
func New(distance, pxPerMeter, width float64) *Calibration {
	return &Calibration{
		ReferenceDistance:   distance,
		ReferencePxPerMeter: pxPerMeter,
		ReferenceWidth:      width,
		PxPerMeter:          pxPerMeter,
	}
}

// Default returns the calibration measured for the reference install.
func Default() *Calibration {
	return New(DefaultReferenceDistance, DefaultReferencePxPerMeter, DefaultReferenceWidth)
}

// EstimateDistance converts a bounding-box width into meters from the camera.
//
//	observed = pixelWidth / ReferenceWidth
//	distance = ReferenceDistance * ReferencePxPerMeter / observed
//
// Arguments:
//   - pixelWidth: Width of the candidate in pixels.
//
// Returns:
//   - float64: Distance in meters, +Inf when pixelWidth is zero.
func (c *Calibration) EstimateDistance(pixelWidth float64) float64 {
	if pixelWidth == 0 {
		return math.Inf(1)
	}
	observed := pixelWidth / c.ReferenceWidth
	return (c.ReferenceDistance * c.ReferencePxPerMeter) / observed
}

// Adjust rescales PxPerMeter for an object at distance meters.
//
// Distances at or beyond MaxDistance (including +Inf and NaN) leave the
// current factor untouched.
//
// Arguments:
//   - distance: Estimated distance in meters.
//
// Returns:
//   - bool: true if PxPerMeter was updated.
func (c *Calibration) Adjust(distance float64) bool {
	if !(distance < MaxDistance) || distance <= 0 {
		return false
	}
	c.PxPerMeter = c.ReferencePxPerMeter * (c.ReferenceDistance / distance)
	return true
}

// Update estimates the distance for pixelWidth and adjusts the factor.
//
// Returns:
//   - float64: The estimated distance.
//   - bool: true if PxPerMeter changed.
func (c *Calibration) Update(pixelWidth float64) (float64, bool) {
	distance := c.EstimateDistance(pixelWidth)
	return distance, c.Adjust(distance)
}

// Reset restores PxPerMeter to the reference ratio.
func (c *Calibration) Reset() {
	c.PxPerMeter = c.ReferencePxPerMeter
}
