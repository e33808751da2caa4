package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionByName(t *testing.T) {
	res, ok := ResolutionByName(" 720P ")
	require.True(t, ok)
	assert.Equal(t, 1280, res.Width)
	assert.Equal(t, 720, res.Height)
	assert.Equal(t, AspectRatio169, res.AspectRatio)
	assert.Equal(t, "720p (1280x720, 0.92MP)", res.String())

	_, ok = ResolutionByName("8k")
	assert.False(t, ok)
}

func TestResolutions_Ordered(t *testing.T) {
	all := Resolutions()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Width*all[i-1].Height, all[i].Width*all[i].Height)
	}
	assert.Equal(t, "4k", all[len(all)-1].Name)
}

func TestHighestResolutionUnder(t *testing.T) {
	tests := []struct {
		width, height int
		want          string
		found         bool
	}{
		{1920, 1080, "1080p", true},
		{1919, 1080, "720p", true},
		{640, 480, "vga", true},
		{320, 240, "", false},
	}
	for _, tt := range tests {
		res, ok := HighestResolutionUnder(tt.width, tt.height)
		assert.Equal(t, tt.found, ok)
		assert.Equal(t, tt.want, res.Name)
	}
}

func TestMegaPixels(t *testing.T) {
	res, _ := ResolutionByName("1080p")
	assert.Equal(t, 2.07, res.MegaPixels())
	assert.Zero(t, Resolution{}.MegaPixels())
}
