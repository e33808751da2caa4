package speed

import (
	"fmt"
	"time"

	"github.com/nvr-ai/go-speedcam/common"
)

// Band classifies a reading relative to the speed limit.
type Band int

const (
	// BandNormal is at or under the warning margin.
	BandNormal Band = iota
	// BandWarning is above limit + warning margin.
	BandWarning
	// BandDanger is above limit + danger margin.
	BandDanger
)

func (b Band) String() string {
	switch b {
	case BandWarning:
		return "warning"
	case BandDanger:
		return "danger"
	default:
		return "normal"
	}
}

// Thresholds are the margins over the limit that move a reading into the
// warning and danger bands.
type Thresholds struct {
	Limit  float64
	Warn   float64
	Danger float64
}

// Classify returns the band of mph against the thresholds.
func (t Thresholds) Classify(mph float64) Band {
	switch {
	case mph >= t.Limit+t.Danger:
		return BandDanger
	case mph >= t.Limit+t.Warn:
		return BandWarning
	default:
		return BandNormal
	}
}

// Reading is a surfaced speed measurement handed to the display collaborator.
type Reading struct {
	// MPH is the smoothed speed multiplied by the calibration factor.
	MPH float64
	// KMH is the smoothed speed converted to km/h.
	KMH float64
	// Box is the candidate in full-frame coordinates.
	Box common.BoundingBox
	// Limit is the configured speed limit in mph.
	Limit float64
	// Band is the speed band of MPH.
	Band Band
	// Timestamp is when the reading was produced.
	Timestamp time.Time
}

func (r Reading) String() string {
	return fmt.Sprintf("%.1f mph (%.1f km/h) limit=%.1f band=%s box=%s",
		r.MPH, r.KMH, r.Limit, r.Band, r.Box)
}
