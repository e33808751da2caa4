// Package controller - Frame sources feeding the pipeline.
package controller

import (
	"io"
	"time"

	"github.com/nvr-ai/go-speedcam/images"
	"github.com/nvr-ai/go-speedcam/util"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// VideoSource reads frames from a video file or capture device. Elapsed time
// is measured between successive reads unless frame-rate timing is enabled.
type VideoSource struct {
	capture     *gocv.VideoCapture
	width       int
	height      int
	fps         float64
	frameTiming bool
	now         func() time.Time
	start       time.Time
	last        time.Time
	next        int
}

// VideoOption customizes a VideoSource.
type VideoOption func(*VideoSource)

// WithFrameRateTiming reports 1/fps seconds elapsed per frame, using the rate
// the capture reports. Recorded files replay faster than real time, so wall
// time would understate speeds. Captures that report no rate keep wall time.
func WithFrameRateTiming() VideoOption {
	return func(v *VideoSource) { v.frameTiming = true }
}

// NewVideoSource opens a video file path or a device id.
//
// For a device, the capture is asked for the largest named resolution that
// fits width x height; frames are then resized to exactly width x height.
//
// Arguments:
//   - device: A file path (string) or capture device id (int).
//   - width, height: Frames of another size are resized. Zero keeps the native size.
//   - opts: Optional behaviour, e.g. WithFrameRateTiming.
//
// Returns:
//   - *VideoSource: The source. Call Close when done.
//   - error: An error if the capture cannot be opened.
func NewVideoSource(device interface{}, width, height int, opts ...VideoOption) (*VideoSource, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open video capture %v", device)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Errorf("video capture %v is not open", device)
	}
	if _, live := device.(int); live {
		if w, h, ok := captureSize(width, height); ok {
			capture.Set(gocv.VideoCaptureFrameWidth, float64(w))
			capture.Set(gocv.VideoCaptureFrameHeight, float64(h))
		}
	}

	now := time.Now()
	v := &VideoSource{
		capture: capture,
		width:   width,
		height:  height,
		fps:     capture.Get(gocv.VideoCaptureFPS),
		now:     time.Now,
		start:   now,
		last:    now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// captureSize snaps a requested frame size to the largest named resolution
// that fits within it. Sizes smaller than every named resolution are
// requested as given.
func captureSize(width, height int) (int, int, bool) {
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	if res, ok := images.HighestResolutionUnder(width, height); ok {
		return res.Width, res.Height, true
	}
	return width, height, true
}

// Next reads the next frame. A failed or empty read ends the source.
func (v *VideoSource) Next() (Frame, error) {
	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return Frame{}, io.EOF
	}
	images.ResizeMat(&mat, v.width, v.height)

	elapsed, timestamp := v.advance()
	frame := Frame{ID: v.next, Mat: mat, Elapsed: elapsed, Timestamp: timestamp}
	v.next++
	return frame, nil
}

// advance returns the elapsed time and timestamp of frame v.next.
func (v *VideoSource) advance() (float64, time.Time) {
	if v.frameTiming && v.fps > 0 {
		interval := time.Duration(float64(time.Second) / v.fps)
		return interval.Seconds(), v.start.Add(time.Duration(v.next+1) * interval)
	}
	now := v.now()
	elapsed := now.Sub(v.last).Seconds()
	v.last = now
	return elapsed, now
}

// FPS returns the frame rate reported by the capture, zero if unknown.
func (v *VideoSource) FPS() float64 {
	return v.fps
}

// Close releases the capture.
func (v *VideoSource) Close() error {
	return v.capture.Close()
}

// DirectorySource replays a frame-<n> image sequence at a fixed rate.
type DirectorySource struct {
	files    []util.ImageFile
	interval time.Duration
	width    int
	height   int
	start    time.Time
	next     int
}

// NewDirectorySource loads an image sequence from dir.
//
// Arguments:
//   - dir: Directory containing frame-<n>.{jpg,png,webp} files.
//   - fps: Replay rate; every frame reports 1/fps seconds elapsed.
//   - width, height: Size frames are resized to.
//
// Returns:
//   - *DirectorySource: The source.
//   - error: An error if the directory cannot be read or fps is not positive.
func NewDirectorySource(dir string, fps float64, width, height int) (*DirectorySource, error) {
	if fps <= 0 {
		return nil, errors.Errorf("fps %v must be positive", fps)
	}
	files, err := util.LoadDirectoryImageFiles(dir)
	if err != nil {
		return nil, err
	}
	return &DirectorySource{
		files:    files,
		interval: time.Duration(float64(time.Second) / fps),
		width:    width,
		height:   height,
		start:    time.Now(),
	}, nil
}

// Len returns the number of frames in the sequence.
func (d *DirectorySource) Len() int {
	return len(d.files)
}

// Next decodes the next image. An image that fails to decode ends the source.
func (d *DirectorySource) Next() (Frame, error) {
	if d.next >= len(d.files) {
		return Frame{}, io.EOF
	}
	file := d.files[d.next]

	mat, err := images.DecodeFrame(file.Data, file.Format, d.width, d.height)
	if err != nil {
		d.next = len(d.files)
		return Frame{}, io.EOF
	}

	frame := Frame{
		ID:        file.Frame,
		Mat:       mat,
		Elapsed:   d.interval.Seconds(),
		Timestamp: d.start.Add(time.Duration(d.next) * d.interval),
	}
	d.next++
	return frame, nil
}

// Close is a no-op; the images are held in memory.
func (d *DirectorySource) Close() error {
	return nil
}
