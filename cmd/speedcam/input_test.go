package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-speedcam/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseZone(t *testing.T) {
	zone, err := parseZone("10, 20,300,200")
	require.NoError(t, err)
	assert.Equal(t, config.Zone{10, 20, 300, 200}, zone)

	for _, bad := range []string{"", "1,2,3", "1,2,3,4,5", "a,b,c,d"} {
		_, err := parseZone(bad)
		assert.ErrorIs(t, err, config.ErrInvalidConfig, bad)
	}
}

func TestValidateInputFlags(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.MP4")
	require.NoError(t, os.WriteFile(video, []byte{0}, 0o600))
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte{0}, 0o600))

	tests := []struct {
		name    string
		in      inputFlags
		want    InputConfig
		wantErr bool
	}{
		{name: "camera", in: inputFlags{deviceID: 2}, want: InputConfig{Type: InputCamera, DeviceID: 2}},
		{name: "video", in: inputFlags{videoPath: video}, want: InputConfig{Type: InputVideo, Path: video}},
		{name: "video frame timing", in: inputFlags{videoPath: video, frameTiming: true}, want: InputConfig{Type: InputVideo, Path: video, FrameTiming: true}},
		{name: "images", in: inputFlags{imagesDir: dir, fps: 15}, want: InputConfig{Type: InputImages, Path: dir, FPS: 15}},
		{name: "both", in: inputFlags{videoPath: video, imagesDir: dir}, wantErr: true},
		{name: "missing video", in: inputFlags{videoPath: filepath.Join(dir, "none.mp4")}, wantErr: true},
		{name: "unsupported video", in: inputFlags{videoPath: notes}, wantErr: true},
		{name: "images not a dir", in: inputFlags{imagesDir: notes, fps: 15}, wantErr: true},
		{name: "zero fps", in: inputFlags{imagesDir: dir}, wantErr: true},
		{name: "negative device", in: inputFlags{deviceID: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateInputFlags(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestInputConfigString(t *testing.T) {
	assert.Equal(t, "device:0", InputConfig{}.String())
	assert.Equal(t, "video:a.mp4", InputConfig{Type: InputVideo, Path: "a.mp4"}.String())
	assert.Equal(t, "images:frames@30fps", InputConfig{Type: InputImages, Path: "frames", FPS: 30}.String())
}

func TestValidateUnits(t *testing.T) {
	assert.NoError(t, validateUnits("mph"))
	assert.NoError(t, validateUnits("kmh"))
	assert.NoError(t, validateUnits("mps"))
	assert.Error(t, validateUnits("knots"))
}

func TestFormatSpeed(t *testing.T) {
	assert.Equal(t, "35.0 mph", formatSpeed(35, "mph"))
	assert.Equal(t, "56.3 kmh", formatSpeed(35, "kmh"))
	assert.Equal(t, "15.6 mps", formatSpeed(35, "mps"))
}
