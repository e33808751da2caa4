// Command speedcam estimates vehicle speeds from a camera, a video file or a
// directory of frame-<n> images and logs every reading over the threshold.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/nvr-ai/go-speedcam/config"
	"github.com/nvr-ai/go-speedcam/controller"
	"github.com/nvr-ai/go-speedcam/profiler"
	"github.com/nvr-ai/go-speedcam/speed"
)

const (
	// DefaultDeviceID is the capture device used when no file input is given.
	DefaultDeviceID = 0
	// DefaultImageFPS is the replay rate of an image directory.
	DefaultImageFPS = 30.0
	// DefaultReportInterval is how often stage timings are logged.
	DefaultReportInterval = 10 * time.Second
)

func main() {
	var (
		configPath string
		videoPath  string
		imagesDir  string
		deviceID   int
		fps        float64
		fpsTiming  bool
		zone       string
		units      string
		report     time.Duration
		debug      bool
	)
	flag.StringVar(&configPath, "config", config.DefaultConfigPath, "Path to the JSON configuration file")
	flag.StringVar(&videoPath, "video", "", "Path to video file (.mp4, .avi, .mov, .mkv)")
	flag.StringVar(&imagesDir, "images", "", "Directory of frame-<n>.{jpg,png,webp} images")
	flag.IntVar(&deviceID, "device", DefaultDeviceID, "Capture device id, used when no file input is given")
	flag.Float64Var(&fps, "fps", DefaultImageFPS, "Replay rate for -images")
	flag.BoolVar(&fpsTiming, "fps-timing", false, "Time -video frames by the file's frame rate instead of wall time")
	flag.StringVar(&units, "units", speed.MPH, "Units for logged readings (mph, kmh, mps)")
	flag.StringVar(&zone, "zone", "", "Detection zone x1,y1,x2,y2, overrides the configuration")
	flag.DurationVar(&report, "report", DefaultReportInterval, "Stage timing report interval, 0 disables")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level, TimeFormat: time.Kitchen}))
	slog.SetDefault(logger)

	if err := run(logger, configPath, zone, units, report, inputFlags{
		videoPath:   videoPath,
		imagesDir:   imagesDir,
		deviceID:    deviceID,
		fps:         fps,
		frameTiming: fpsTiming,
	}); err != nil {
		logger.Error("speedcam failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath, zone, units string, report time.Duration, in inputFlags) error {
	if err := validateUnits(units); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if zone != "" {
		z, err := parseZone(zone)
		if err != nil {
			return err
		}
		cfg.DetectionZone = &z
	}

	input, err := validateInputFlags(in)
	if err != nil {
		return err
	}
	src, err := openSource(input, cfg)
	if err != nil {
		return err
	}
	defer src.Close()
	if video, ok := src.(*controller.VideoSource); ok {
		logger.Info("video source opened", "fps", video.FPS(), "fps_timing", input.FrameTiming)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder *profiler.Recorder
	if report > 0 {
		recorder = profiler.New(profiler.Options{ReportInterval: report, Logger: logger})
		recorder.Start(ctx)
		defer recorder.Stop()
	}

	gauge := &speed.Gauge{}
	pipeline, err := controller.NewPipeline(cfg,
		controller.WithLogger(logger),
		controller.WithRecorder(recorder),
		controller.WithGauge(gauge),
	)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	logger.Info("speedcam starting",
		"input", input,
		"frame", [2]int{cfg.FrameWidth, cfg.FrameHeight},
		"zone", cfg.Zone(),
		"limit_mph", cfg.SpeedLimitMPH)

	readings := 0
	err = pipeline.Run(ctx, src, func(r controller.Result) {
		if r.Reading == nil {
			return
		}
		readings++
		if r.Reading.Band != speed.BandNormal {
			logger.Warn("speeding vehicle",
				"speed", formatSpeed(r.Reading.MPH, units),
				"limit", formatSpeed(r.Reading.Limit, units),
				"band", r.Reading.Band.String(),
				"box", r.Reading.Box.String())
		}
	})

	mph, at := gauge.Load()
	logger.Info("speedcam finished", "readings", readings, "last_speed", formatSpeed(mph, units), "last_at", at)
	if recorder != nil {
		recorder.Report()
	}
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// openSource opens the frame source selected on the command line.
func openSource(input *InputConfig, cfg config.Config) (controller.FrameSource, error) {
	switch input.Type {
	case InputImages:
		return controller.NewDirectorySource(input.Path, input.FPS, cfg.FrameWidth, cfg.FrameHeight)
	case InputVideo:
		var opts []controller.VideoOption
		if input.FrameTiming {
			opts = append(opts, controller.WithFrameRateTiming())
		}
		return controller.NewVideoSource(input.Path, cfg.FrameWidth, cfg.FrameHeight, opts...)
	default:
		return controller.NewVideoSource(input.DeviceID, cfg.FrameWidth, cfg.FrameHeight)
	}
}
