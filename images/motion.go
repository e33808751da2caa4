// Package images - This file contains the motion segmenter that turns a
// region of interest into at most one candidate vehicle region per frame.
//
// Pipeline Overview:
//
// ┌──────────────────────────┐
// │ ROI (color)              │
// └──────┬───────────────────┘
// ┌──────────────────────────┐
// │ Grayscale + 15x15 blur   │
// └──────┬───────────────────┘
// ┌──────────────────────────┐
// │ AbsDiff with prior frame │
// └──────┬───────────────────┘
// ┌──────────────────────────┐
// │ AND foreground mask      │
// └──────┬───────────────────┘
// ┌──────────────────────────┐
// │ Threshold + open (3x3)   │
// └──────┬───────────────────┘
// ┌──────────────────────────┐
// │ External contours, area  │
// │ window, largest wins     │
// └──────────────────────────┘
//
// Usage:
//
//	seg := images.NewMotionSegmenter(images.DefaultSegmenterConfig())
//	defer seg.Close()
//
//	for {
//	    candidate, ok, err := seg.Segment(roi, mask)
//	    ...
//	}
//
// Note: You must call Close() when finished to release native resources.
package images

import (
	"image"

	"github.com/nvr-ai/go-speedcam/common"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// SegmenterConfig contains the tuning of the motion segmenter.
type SegmenterConfig struct {
	// BlurKernelSize is the Gaussian kernel edge, must be odd.
	BlurKernelSize int
	// DifferenceThreshold binarizes the masked frame difference.
	DifferenceThreshold float32
	// MorphKernelSize is the edge of the rectangular opening element.
	MorphKernelSize int
	// MinContourArea is the exclusive lower bound of the accepted area window.
	MinContourArea float64
	// MaxContourArea is the exclusive upper bound of the accepted area window.
	MaxContourArea float64
}

// DefaultSegmenterConfig returns the segmenter tuning for a 1280x720 road view.
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		BlurKernelSize:      15,
		DifferenceThreshold: 30,
		MorphKernelSize:     3,
		MinContourArea:      1200,
		MaxContourArea:      8000,
	}
}

// MotionSegmenter finds the single largest moving region in consecutive
// frames. It keeps the blurred grayscale of the previous call as the
// reference for the next one.
//
// This struct is stateful and not safe for concurrent use.
type MotionSegmenter struct {
	config   SegmenterConfig
	previous gocv.Mat
	kernel   gocv.Mat
	hasPrior bool
}

// NewMotionSegmenter constructs a segmenter with no prior frame.
//
// Arguments:
//   - config: Blur, threshold, opening and area window settings.
//
// Returns:
//   - *MotionSegmenter: The initialized segmenter.
func NewMotionSegmenter(config SegmenterConfig) *MotionSegmenter {
	if config.BlurKernelSize <= 0 || config.BlurKernelSize%2 == 0 {
		config.BlurKernelSize = DefaultSegmenterConfig().BlurKernelSize
	}
	if config.MorphKernelSize <= 0 {
		config.MorphKernelSize = DefaultSegmenterConfig().MorphKernelSize
	}
	return &MotionSegmenter{
		config:   config,
		previous: gocv.NewMat(),
		kernel:   gocv.GetStructuringElement(gocv.MorphRect, image.Pt(config.MorphKernelSize, config.MorphKernelSize)),
	}
}

// Segment runs one frame through the segmenter.
//
// The first call only stores the baseline and reports no candidate. Every
// call, with or without a candidate, replaces the stored prior frame.
//
// Arguments:
//   - roi: The color region of interest.
//   - foreground: The {0,255} mask from the background model for the same roi.
//
// Returns:
//   - common.Candidate: The largest contour inside the area window, in roi coordinates.
//   - bool: false when there is no candidate.
//   - error: An error if roi is empty or the mask does not match roi.
func (m *MotionSegmenter) Segment(roi gocv.Mat, foreground gocv.Mat) (common.Candidate, bool, error) {
	if roi.Empty() {
		return common.Candidate{}, false, ErrEmptyFrame
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred,
		image.Pt(m.config.BlurKernelSize, m.config.BlurKernelSize),
		0, 0, gocv.BorderDefault)
	defer m.storePrior(blurred)

	if !m.hasPrior || m.previous.Rows() != blurred.Rows() || m.previous.Cols() != blurred.Cols() {
		return common.Candidate{}, false, nil
	}
	if foreground.Rows() != blurred.Rows() || foreground.Cols() != blurred.Cols() {
		return common.Candidate{}, false, errors.Errorf("foreground mask %dx%d does not match roi %dx%d",
			foreground.Cols(), foreground.Rows(), blurred.Cols(), blurred.Rows())
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(m.previous, blurred, &diff)

	// A freshly allocated destination is zero outside the mask.
	masked := gocv.NewMat()
	defer masked.Close()
	gocv.BitwiseAndWithMask(diff, diff, &masked, foreground)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(masked, &binary, m.config.DifferenceThreshold, 255, gocv.ThresholdBinary)
	gocv.MorphologyEx(binary, &binary, gocv.MorphOpen, m.kernel)

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	candidate, ok := SelectCandidate(contours, m.config.MinContourArea, m.config.MaxContourArea)
	return candidate, ok, nil
}

// SelectCandidate picks the contour with the largest area strictly inside
// (minArea, maxArea). Among equal areas the first contour wins.
//
// Arguments:
//   - contours: External contours of a binary motion mask.
//   - minArea, maxArea: Exclusive area window.
//
// Returns:
//   - common.Candidate: The winning contour's bounding box and area.
//   - bool: false if no contour qualifies.
func SelectCandidate(contours gocv.PointsVector, minArea, maxArea float64) (common.Candidate, bool) {
	best := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area <= minArea || area >= maxArea {
			continue
		}
		if best < 0 || area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return common.Candidate{}, false
	}
	return common.Candidate{
		Box:  common.NewBoundingBox(gocv.BoundingRect(contours.At(best))),
		Area: bestArea,
	}, true
}

// storePrior takes ownership of blurred as the reference for the next call.
func (m *MotionSegmenter) storePrior(blurred gocv.Mat) {
	m.previous.Close()
	m.previous = blurred
	m.hasPrior = true
}

// HasPrior reports whether a baseline frame is stored.
func (m *MotionSegmenter) HasPrior() bool {
	return m.hasPrior
}

// Prior returns the stored blurred grayscale frame. The Mat stays owned by
// the segmenter and is replaced on the next Segment call.
func (m *MotionSegmenter) Prior() gocv.Mat {
	return m.previous
}

// Config returns the segmenter tuning.
func (m *MotionSegmenter) Config() SegmenterConfig {
	return m.config
}

// Reset drops the prior frame so the next call establishes a new baseline.
func (m *MotionSegmenter) Reset() {
	m.previous.Close()
	m.previous = gocv.NewMat()
	m.hasPrior = false
}

// Close releases all OpenCV native resources used by the segmenter.
func (m *MotionSegmenter) Close() {
	m.previous.Close()
	m.kernel.Close()
}
