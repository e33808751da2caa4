// Package controller - This file contains the frame and result types exchanged
// between the pipeline and its collaborators.
package controller

import (
	"io"
	"time"

	"github.com/nvr-ai/go-speedcam/common"
	"github.com/nvr-ai/go-speedcam/speed"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

var (
	// ErrSourceExhausted marks the end of a frame source. It is io.EOF so
	// sources may return either.
	ErrSourceExhausted = io.EOF
	// ErrPipelineClosed is returned by ProcessFrame after Close.
	ErrPipelineClosed = errors.New("pipeline closed")
)

// Frame is a single BGR frame of video.
type Frame struct {
	ID int
	// Mat is the BGR image. The pipeline does not take ownership.
	Mat gocv.Mat
	// Elapsed is the time in seconds since the previous frame.
	Elapsed float64
	// Timestamp is when the frame was acquired.
	Timestamp time.Time
}

// Close releases the frame's image.
func (f Frame) Close() {
	f.Mat.Close()
}

// Result is the outcome of one frame.
type Result struct {
	FrameID int
	// Candidate is the selected motion region in full-frame coordinates, nil
	// when the segmenter found nothing.
	Candidate *common.Candidate
	// Distance is the estimated distance of the candidate in meters.
	Distance float64
	// Reading is the surfaced speed, nil when nothing passed the gate.
	Reading *speed.Reading
}

// Detected reports whether the frame produced a speed reading.
func (r Result) Detected() bool {
	return r.Reading != nil
}

// FrameSource yields frames until exhausted.
type FrameSource interface {
	// Next returns the next frame, or io.EOF when the source is exhausted.
	// The caller owns the returned frame.
	Next() (Frame, error)
	Close() error
}
