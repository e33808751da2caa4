package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-speedcam/config"
	"github.com/nvr-ai/go-speedcam/speed"
	"github.com/pkg/errors"
)

// Supported file extensions
var supportedVideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}

// InputType represents the type of input being processed
type InputType int

const (
	InputCamera InputType = iota
	InputVideo
	InputImages
)

// InputConfig holds the input configuration
type InputConfig struct {
	Type     InputType
	Path     string
	DeviceID int
	FPS      float64
	// FrameTiming derives a video file's elapsed time from its frame rate.
	FrameTiming bool
}

func (c InputConfig) String() string {
	switch c.Type {
	case InputVideo:
		return "video:" + c.Path
	case InputImages:
		return fmt.Sprintf("images:%s@%gfps", c.Path, c.FPS)
	default:
		return fmt.Sprintf("device:%d", c.DeviceID)
	}
}

type inputFlags struct {
	videoPath   string
	imagesDir   string
	deviceID    int
	fps         float64
	frameTiming bool
}

// validateInputFlags picks the input. With neither -video nor -images the
// capture device is used.
func validateInputFlags(in inputFlags) (*InputConfig, error) {
	if in.videoPath != "" && in.imagesDir != "" {
		return nil, errors.New("cannot specify both -video and -images")
	}

	if in.videoPath != "" {
		if err := validateFile(in.videoPath, supportedVideoExtensions); err != nil {
			return nil, errors.Wrap(err, "video validation error")
		}
		return &InputConfig{Type: InputVideo, Path: in.videoPath, FrameTiming: in.frameTiming}, nil
	}

	if in.imagesDir != "" {
		info, err := os.Stat(in.imagesDir)
		if err != nil {
			return nil, errors.Wrap(err, "images validation error")
		}
		if !info.IsDir() {
			return nil, errors.Errorf("images validation error: %s is not a directory", in.imagesDir)
		}
		if in.fps <= 0 {
			return nil, errors.Errorf("fps %v must be positive", in.fps)
		}
		return &InputConfig{Type: InputImages, Path: in.imagesDir, FPS: in.fps}, nil
	}

	if in.deviceID < 0 {
		return nil, errors.Errorf("device id %d must not be negative", in.deviceID)
	}
	return &InputConfig{Type: InputCamera, DeviceID: in.deviceID}, nil
}

// validateFile checks if the file exists and has a supported extension
func validateFile(filePath string, supportedExtensions []string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return errors.Errorf("file not found: %s", filePath)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supportedExt := range supportedExtensions {
		if ext == supportedExt {
			return nil
		}
	}

	return errors.Errorf("unsupported file extension: %s. Supported extensions: %v", ext, supportedExtensions)
}

// parseZone parses "x1,y1,x2,y2" into a detection zone.
func parseZone(s string) (config.Zone, error) {
	var zone config.Zone
	parts := strings.Split(s, ",")
	if len(parts) != len(zone) {
		return zone, errors.Wrapf(config.ErrInvalidConfig, "zone %q must be x1,y1,x2,y2", s)
	}
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return zone, errors.Wrapf(config.ErrInvalidConfig, "zone %q: %v", s, err)
		}
		zone[i] = v
	}
	return zone, nil
}

// validateUnits checks the -units flag.
func validateUnits(unit string) error {
	if !speed.ValidUnit(unit) {
		return errors.Errorf("unsupported units %q. Supported units: %v", unit, speed.Units)
	}
	return nil
}

// formatSpeed renders a reading's mph in the display unit.
func formatSpeed(mph float64, unit string) string {
	return fmt.Sprintf("%.1f %s", speed.Convert(mph, unit), unit)
}
