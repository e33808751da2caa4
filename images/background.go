// Package images - This file contains the background model used to classify
// pixels of a region of interest as moving foreground or static background.
package images

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	// DefaultBackgroundHistory is the number of frames the background statistics
	// are averaged over. Slow lighting changes are absorbed within this window.
	DefaultBackgroundHistory = 300
	// DefaultVarianceThreshold is the squared Mahalanobis distance above which a
	// pixel is considered foreground.
	DefaultVarianceThreshold = 24.0
)

// BackgroundConfig configures the background model.
type BackgroundConfig struct {
	// History is the adaptation window in frames.
	History int
	// VarianceThreshold is the foreground variance threshold.
	VarianceThreshold float64
}

// DefaultBackgroundConfig returns the configuration used by the speed pipeline.
func DefaultBackgroundConfig() BackgroundConfig {
	return BackgroundConfig{
		History:           DefaultBackgroundHistory,
		VarianceThreshold: DefaultVarianceThreshold,
	}
}

// ForegroundModel classifies the pixels of a frame as foreground (255) or
// background (0) and updates its statistics with that frame.
type ForegroundModel interface {
	Apply(roi gocv.Mat, mask *gocv.Mat) error
	Close() error
}

// BackgroundModel maintains a per-pixel Gaussian mixture of the static scene
// (MOG2). Shadow detection is disabled so shadow pixels never enter the
// foreground class.
//
// The model is stateful and must be fed every frame of a session in order.
// Always call Close() when done to release native resources.
type BackgroundModel struct {
	config     BackgroundConfig
	subtractor gocv.BackgroundSubtractorMOG2
}

// NewBackgroundModel constructs a background model with empty statistics.
//
// Arguments:
//   - config: History window and variance threshold.
//
// Returns:
//   - *BackgroundModel: The initialized model.
//
// @example
// model := NewBackgroundModel(DefaultBackgroundConfig())
// defer model.Close()
func NewBackgroundModel(config BackgroundConfig) *BackgroundModel {
	if config.History <= 0 {
		config.History = DefaultBackgroundHistory
	}
	if config.VarianceThreshold <= 0 {
		config.VarianceThreshold = DefaultVarianceThreshold
	}
	return &BackgroundModel{
		config:     config,
		subtractor: gocv.NewBackgroundSubtractorMOG2WithParams(config.History, config.VarianceThreshold, false),
	}
}

// Apply classifies roi against the accumulated background and folds roi into
// the statistics.
//
// Arguments:
//   - roi: The color region of interest.
//   - mask: Receives a single channel mask with values {0, 255}, same size as roi.
//
// Returns:
//   - error: ErrEmptyFrame if roi is empty, or the OpenCV error.
func (b *BackgroundModel) Apply(roi gocv.Mat, mask *gocv.Mat) error {
	if roi.Empty() {
		return ErrEmptyFrame
	}
	if err := b.subtractor.Apply(roi, mask); err != nil {
		return errors.Wrap(err, "background subtraction failed")
	}
	return nil
}

// Config returns the configuration the model was built with.
func (b *BackgroundModel) Config() BackgroundConfig {
	return b.config
}

// Close releases the native subtractor.
func (b *BackgroundModel) Close() error {
	return b.subtractor.Close()
}
