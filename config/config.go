// Package config - JSON configuration for the speed camera pipeline.
package config

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"

	"github.com/nvr-ai/go-speedcam/calibration"
	"github.com/nvr-ai/go-speedcam/images"
	"github.com/pkg/errors"
)

// DefaultConfigPath is the configuration file looked up when none is given.
const DefaultConfigPath = "config.json"

// maxFileSize caps the configuration file read.
const maxFileSize = 1 << 20

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Zone is a detection rectangle given as [x1, y1, x2, y2] in frame coordinates.
type Zone [4]int

// Rect returns the zone as an image.Rectangle.
func (z Zone) Rect() image.Rectangle {
	return image.Rect(z[0], z[1], z[2], z[3])
}

// Config represents the settings consumed by the pipeline and frame sources.
type Config struct {
	// PxPerMeter is accepted for compatibility; the pipeline derives its
	// scale from the calibration reference instead.
	PxPerMeter float64 `json:"px_per_meter"`
	// FrameWidth is the width frames are normalized to.
	FrameWidth int `json:"frame_width"`
	// FrameHeight is the height frames are normalized to.
	FrameHeight int `json:"frame_height"`
	// Resolution names a capture size ("720p", "1080p", ...). When set it
	// replaces FrameWidth and FrameHeight.
	Resolution string `json:"resolution,omitempty"`
	// SpeedLimitMPH is copied into every reading.
	SpeedLimitMPH float64 `json:"speed_limit_mph"`
	// CalibrationFactor multiplies the surfaced mph.
	CalibrationFactor float64 `json:"calibration_factor"`
	// DistanceCompensation is loaded but not applied anywhere.
	DistanceCompensation float64 `json:"distance_compensation"`
	// MinSpeedThreshold gates readings; slower speeds are treated as noise.
	MinSpeedThreshold float64 `json:"min_speed_threshold"`
	// WarnThresholdMPH is the margin over the limit for the warning band.
	WarnThresholdMPH float64 `json:"warn_threshold_mph"`
	// DangerThresholdMPH is the margin over the limit for the danger band.
	DangerThresholdMPH float64 `json:"danger_threshold_mph"`
	// CalibrationDistanceM is the reference distance in meters.
	CalibrationDistanceM float64 `json:"calibration_distance_m"`
	// CalibrationPxPerM is the ratio measured at CalibrationDistanceM.
	CalibrationPxPerM float64 `json:"calibration_px_per_m"`
	// ReferenceWidthM is the assumed vehicle width in meters.
	ReferenceWidthM float64 `json:"reference_width_m"`
	// MinContourArea is the exclusive lower bound of the candidate area window.
	MinContourArea float64 `json:"min_contour_area"`
	// MaxContourArea is the exclusive upper bound of the candidate area window.
	MaxContourArea float64 `json:"max_contour_area"`
	// DetectionZone is the ROI. Nil means the full frame.
	DetectionZone *Zone `json:"detection_zone,omitempty"`
}

// Default returns the documented in-process defaults.
//
// Returns:
//   - Config: Configuration used when no file is present.
//
// @example
// cfg := config.Default()
// cfg.SpeedLimitMPH = 25
func Default() Config {
	return Config{
		PxPerMeter:           85,
		FrameWidth:           1280,
		FrameHeight:          720,
		SpeedLimitMPH:        35.0,
		CalibrationFactor:    1.0,
		DistanceCompensation: 1.18,
		MinSpeedThreshold:    10.0,
		WarnThresholdMPH:     5.0,
		DangerThresholdMPH:   10.0,
		CalibrationDistanceM: calibration.DefaultReferenceDistance,
		CalibrationPxPerM:    calibration.DefaultReferencePxPerMeter,
		ReferenceWidthM:      calibration.DefaultReferenceWidth,
		MinContourArea:       1200,
		MaxContourArea:       8000,
	}
}

// Load reads a JSON configuration file.
//
// A missing file is not an error: the defaults are returned. Keys absent
// from the file keep their default values. The result is validated.
//
// Arguments:
//   - path: Path to the JSON file, DefaultConfigPath when empty.
//
// Returns:
//   - Config: The loaded configuration.
//   - error: A read or parse error, or a validation error wrapping ErrInvalidConfig.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	cfg := Default()

	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(err, "failed to stat config file")
	}
	if info.Size() > maxFileSize {
		return cfg, errors.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to read config file")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), errors.Wrapf(ErrInvalidConfig, "failed to parse %s: %v", cleanPath, err)
	}
	if err := cfg.ApplyResolution(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyResolution copies the named resolution into FrameWidth and
// FrameHeight. An empty name leaves them unchanged.
func (c *Config) ApplyResolution() error {
	if c.Resolution == "" {
		return nil
	}
	res, ok := images.ResolutionByName(c.Resolution)
	if !ok {
		return errors.Wrapf(ErrInvalidConfig, "unknown resolution %q", c.Resolution)
	}
	c.FrameWidth, c.FrameHeight = res.Width, res.Height
	return nil
}

// Zone returns the detection zone, defaulting to the full frame.
func (c Config) Zone() image.Rectangle {
	if c.DetectionZone == nil {
		return image.Rect(0, 0, c.FrameWidth, c.FrameHeight)
	}
	return c.DetectionZone.Rect()
}

// Validate checks the numeric settings before the pipeline starts.
//
// Returns:
//   - error: nil, or an error wrapping ErrInvalidConfig naming the field.
func (c Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.Wrapf(ErrInvalidConfig, format, args...)
	}

	switch {
	case c.FrameWidth <= 0 || c.FrameHeight <= 0:
		return invalid("frame size %dx%d must be positive", c.FrameWidth, c.FrameHeight)
	case c.SpeedLimitMPH <= 0:
		return invalid("speed_limit_mph %v must be positive", c.SpeedLimitMPH)
	case c.CalibrationFactor < 0:
		return invalid("calibration_factor %v must not be negative", c.CalibrationFactor)
	case c.MinSpeedThreshold < 0:
		return invalid("min_speed_threshold %v must not be negative", c.MinSpeedThreshold)
	case c.WarnThresholdMPH < 0 || c.DangerThresholdMPH < 0:
		return invalid("speed band thresholds must not be negative")
	case c.CalibrationDistanceM <= 0 || c.CalibrationPxPerM <= 0 || c.ReferenceWidthM <= 0:
		return invalid("calibration reference values must be positive")
	case c.MinContourArea < 0 || c.MinContourArea >= c.MaxContourArea:
		return invalid("contour area window (%v, %v) is empty", c.MinContourArea, c.MaxContourArea)
	}

	zone := c.Zone()
	frame := image.Rect(0, 0, c.FrameWidth, c.FrameHeight)
	if zone.Empty() || zone.Min.X < 0 || zone.Min.Y < 0 || !zone.In(frame) {
		return invalid("detection zone %v must be a non-empty region inside %v", zone, frame)
	}
	return nil
}
