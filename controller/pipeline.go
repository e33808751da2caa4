// Package controller - Frame-synchronous speed estimation pipeline.
package controller

import (
	"context"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nvr-ai/go-speedcam/calibration"
	"github.com/nvr-ai/go-speedcam/common"
	"github.com/nvr-ai/go-speedcam/config"
	"github.com/nvr-ai/go-speedcam/images"
	"github.com/nvr-ai/go-speedcam/profiler"
	"github.com/nvr-ai/go-speedcam/speed"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithRecorder records per-stage timings.
func WithRecorder(recorder *profiler.Recorder) Option {
	return func(p *Pipeline) { p.recorder = recorder }
}

// WithGauge publishes every surfaced speed to gauge.
func WithGauge(gauge *speed.Gauge) Option {
	return func(p *Pipeline) { p.gauge = gauge }
}

// WithClock replaces time.Now for detection timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithBackgroundFactory replaces the MOG2 background model.
func WithBackgroundFactory(factory func() images.ForegroundModel) Option {
	return func(p *Pipeline) { p.newBackground = factory }
}

// Pipeline runs each frame through background model, motion segmenter,
// distance estimation, calibration and speed estimation.
//
// A Pipeline holds the state of one detection session. It is not safe for
// concurrent ProcessFrame calls; only Stop and the gauge may be used from
// other goroutines.
type Pipeline struct {
	config config.Config
	zone   image.Rectangle

	newBackground func() images.ForegroundModel
	background    images.ForegroundModel
	segmenter     *images.MotionSegmenter
	calibration   *calibration.Calibration
	estimator     *speed.Estimator
	thresholds    speed.Thresholds

	lastDetection time.Time
	running       atomic.Bool
	closed        bool

	logger   *slog.Logger
	recorder *profiler.Recorder
	gauge    *speed.Gauge
	now      func() time.Time
}

// NewPipeline builds a pipeline for a validated configuration.
//
// Arguments:
//   - cfg: Configuration, normally from config.Load.
//   - opts: Optional collaborators.
//
// Returns:
//   - *Pipeline: The pipeline. Call Close when done.
//   - error: A validation error wrapping config.ErrInvalidConfig.
//
// @example
// cfg, err := config.Load("config.json")
// p, err := controller.NewPipeline(cfg)
// defer p.Close()
// err = p.Run(ctx, source, func(r controller.Result) { ... })
func NewPipeline(cfg config.Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		config: cfg,
		zone:   cfg.Zone(),
		newBackground: func() images.ForegroundModel {
			return images.NewBackgroundModel(images.DefaultBackgroundConfig())
		},
		calibration: calibration.New(cfg.CalibrationDistanceM, cfg.CalibrationPxPerM, cfg.ReferenceWidthM),
		estimator:   speed.NewEstimator(speed.DefaultSmoothing),
		thresholds: speed.Thresholds{
			Limit:  cfg.SpeedLimitMPH,
			Warn:   cfg.WarnThresholdMPH,
			Danger: cfg.DangerThresholdMPH,
		},
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	segmenterConfig := images.DefaultSegmenterConfig()
	segmenterConfig.MinContourArea = cfg.MinContourArea
	segmenterConfig.MaxContourArea = cfg.MaxContourArea

	p.background = p.newBackground()
	p.segmenter = images.NewMotionSegmenter(segmenterConfig)
	p.running.Store(true)

	return p, nil
}

// ProcessFrame runs one frame through the whole pipeline.
//
// Arguments:
//   - frame: The frame and its elapsed time. The caller keeps ownership.
//
// Returns:
//   - Result: The candidate and reading, either may be nil.
//   - error: An error if the frame cannot be processed.
func (p *Pipeline) ProcessFrame(frame Frame) (Result, error) {
	if p.closed {
		return Result{}, ErrPipelineClosed
	}
	defer p.recorder.StartOperation(profiler.StageFrame)()

	result := Result{FrameID: frame.ID}

	roi, origin, err := images.CropRegion(frame.Mat, p.zone)
	if err != nil {
		roi.Close()
		return result, errors.Wrapf(err, "frame %d", frame.ID)
	}
	defer roi.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	done := p.recorder.StartOperation(profiler.StageBackground)
	err = p.background.Apply(roi, &mask)
	done()
	if err != nil {
		return result, errors.Wrapf(err, "frame %d", frame.ID)
	}

	done = p.recorder.StartOperation(profiler.StageSegment)
	candidate, ok, err := p.segmenter.Segment(roi, mask)
	done()
	if err != nil {
		return result, errors.Wrapf(err, "frame %d", frame.ID)
	}
	if !ok {
		return result, nil
	}

	done = p.recorder.StartOperation(profiler.StageCalibrate)
	distance, updated := p.calibration.Update(float64(candidate.Box.Width))
	done()
	if updated {
		p.logger.Debug("calibration rescaled",
			"frame", frame.ID, "distance_m", distance, "px_per_meter", p.calibration.PxPerMeter)
	}

	full := common.Candidate{Box: candidate.Box.Offset(origin), Area: candidate.Area}
	result.Candidate = &full
	result.Distance = distance

	now := p.now()
	if p.lastDetection.IsZero() {
		p.lastDetection = now
		return result, nil
	}
	p.lastDetection = now

	// No speed without a positive frame interval; smoothing state is untouched.
	if frame.Elapsed <= 0 {
		p.logger.Debug("frame has no elapsed time", "frame", frame.ID, "elapsed", frame.Elapsed)
		return result, nil
	}

	done = p.recorder.StartOperation(profiler.StageSpeed)
	mph := p.estimator.Estimate(candidate.Box.Top(), candidate.Box.Bottom(), frame.Elapsed, p.calibration.PxPerMeter)
	done()

	if mph <= p.config.MinSpeedThreshold {
		p.logger.Debug("speed below threshold", "frame", frame.ID, "mph", mph)
		return result, nil
	}

	surfaced := mph * p.config.CalibrationFactor
	reading := &speed.Reading{
		MPH:       surfaced,
		KMH:       speed.ToKMH(mph),
		Box:       full.Box,
		Limit:     p.config.SpeedLimitMPH,
		Band:      p.thresholds.Classify(surfaced),
		Timestamp: now,
	}
	result.Reading = reading

	if p.gauge != nil {
		p.gauge.Store(surfaced, now)
	}
	return result, nil
}

// Run reads frames from src until it is exhausted, ctx is done or Stop is
// called, handing every result to sink. The running flag and ctx are checked
// once per frame. Frames are closed after processing.
//
// Run does not re-arm the running flag: after Stop it returns immediately
// until Reset is called.
//
// Returns:
//   - error: nil on exhaustion or Stop, ctx.Err() on cancellation,
//     ErrPipelineClosed after Close, otherwise the first source or processing error.
func (p *Pipeline) Run(ctx context.Context, src FrameSource, sink func(Result)) error {
	if p.closed {
		return ErrPipelineClosed
	}
	p.logger.Info("pipeline started", "zone", p.zone)
	defer p.logger.Info("pipeline stopped")

	for p.running.Load() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame, err := src.Next()
		if errors.Is(err, ErrSourceExhausted) {
			p.logger.Info("frame source exhausted")
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to read frame")
		}

		result, err := p.ProcessFrame(frame)
		frame.Close()
		if err != nil {
			return err
		}
		if result.Reading != nil {
			p.logger.Info("speed reading",
				"frame", result.FrameID,
				"mph", result.Reading.MPH,
				"kmh", result.Reading.KMH,
				"limit", result.Reading.Limit,
				"band", result.Reading.Band.String(),
				"box", result.Reading.Box.String())
		}
		if sink != nil {
			sink(result)
		}
	}
	return nil
}

// Stop asks Run to return at the next frame boundary. Safe to call from any goroutine.
func (p *Pipeline) Stop() {
	p.running.Store(false)
}

// Running reports the running flag.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// PxPerMeter returns the current effective scale factor.
func (p *Pipeline) PxPerMeter() float64 {
	return p.calibration.PxPerMeter
}

// LastDetection returns when a candidate was last seen, zero if never.
func (p *Pipeline) LastDetection() time.Time {
	return p.lastDetection
}

// Reset starts a new detection session: fresh background model, no prior
// frame, no smoothing history or detection timestamp, reference scale. It
// sets the running flag again unless the pipeline is closed.
func (p *Pipeline) Reset() {
	if p.closed {
		return
	}
	p.running.Store(true)
	p.background.Close()
	p.background = p.newBackground()
	p.segmenter.Reset()
	p.calibration.Reset()
	p.estimator.Reset()
	p.lastDetection = time.Time{}
	if p.gauge != nil {
		p.gauge.Reset()
	}
}

// Close releases native resources. ProcessFrame fails afterwards.
func (p *Pipeline) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.running.Store(false)
	p.segmenter.Close()
	return p.background.Close()
}
