package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func getTestImage() image.Image {
	// Create a simple 100x80 red image.
	img := image.NewRGBA(image.Rect(0, 0, 100, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}
	return img
}

func encode(t *testing.T, format ImageFormat) []byte {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(&buf, getTestImage(), &jpeg.Options{Quality: 100})
	case FormatPNG:
		err = png.Encode(&buf, getTestImage())
	case FormatWebP:
		err = webp.Encode(&buf, getTestImage(), &webp.Options{Lossless: true})
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected ImageFormat
		ok       bool
	}{
		{path: "frame-1.jpg", expected: FormatJPEG, ok: true},
		{path: "frame-1.JPEG", expected: FormatJPEG, ok: true},
		{path: "dir/frame-2.png", expected: FormatPNG, ok: true},
		{path: "frame-3.webp", expected: FormatWebP, ok: true},
		{path: "frame-4.bmp", ok: false},
		{path: "notes.txt", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, ok := FormatFromPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestDecodeFrame(t *testing.T) {
	for _, format := range []ImageFormat{FormatJPEG, FormatPNG, FormatWebP} {
		t.Run(string(format), func(t *testing.T) {
			data := encode(t, format)

			mat, err := DecodeFrame(data, format, 0, 0)
			require.NoError(t, err)
			defer mat.Close()
			assert.Equal(t, 100, mat.Cols())
			assert.Equal(t, 80, mat.Rows())
			assert.Equal(t, gocv.MatTypeCV8UC3, mat.Type())

			// BGR layout: red lands in the third channel.
			assert.Greater(t, mat.GetUCharAt(40, 50*3+2), uint8(200))
			assert.Less(t, mat.GetUCharAt(40, 50*3+0), uint8(50))

			resized, err := DecodeFrame(data, format, 50, 40)
			require.NoError(t, err)
			defer resized.Close()
			assert.Equal(t, 50, resized.Cols())
			assert.Equal(t, 40, resized.Rows())
		})
	}
}

func TestDecodeFrame_Errors(t *testing.T) {
	_, err := DecodeFrame([]byte("not an image"), FormatPNG, 0, 0)
	assert.Error(t, err)

	_, err = DecodeFrame(nil, ImageFormat("tiff"), 0, 0)
	assert.Error(t, err)
}

func TestCropRegion(t *testing.T) {
	frame := blankFrame(200, 100)
	defer frame.Close()

	roi, origin, err := CropRegion(frame, image.Rect(50, 20, 150, 80))
	require.NoError(t, err)
	defer roi.Close()
	assert.Equal(t, image.Pt(50, 20), origin)
	assert.Equal(t, 100, roi.Cols())
	assert.Equal(t, 60, roi.Rows())

	clipped, origin, err := CropRegion(frame, image.Rect(150, 50, 400, 400))
	require.NoError(t, err)
	defer clipped.Close()
	assert.Equal(t, image.Pt(150, 50), origin)
	assert.Equal(t, 50, clipped.Cols())
	assert.Equal(t, 50, clipped.Rows())

	_, _, err = CropRegion(frame, image.Rect(300, 300, 400, 400))
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestResizeMat(t *testing.T) {
	mat := blankFrame(64, 48)
	defer func() { mat.Close() }()

	assert.False(t, ResizeMat(&mat, 64, 48), "same size is a no-op")
	assert.False(t, ResizeMat(&mat, 0, 48), "non-positive size is a no-op")
	assert.True(t, ResizeMat(&mat, 32, 24))
	assert.Equal(t, 32, mat.Cols())
	assert.Equal(t, 24, mat.Rows())
}

func TestImageToMat_Nil(t *testing.T) {
	_, err := ImageToMat(nil)
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestFingerprint(t *testing.T) {
	a := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 20, 30, 0), 8, 8, gocv.MatTypeCV8UC3)
	defer a.Close()
	b := a.Clone()
	defer b.Close()
	c := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 20, 31, 0), 8, 8, gocv.MatTypeCV8UC3)
	defer c.Close()

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))

	region := a.Region(image.Rect(2, 2, 6, 6))
	defer region.Close()
	whole := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 20, 30, 0), 4, 4, gocv.MatTypeCV8UC3)
	defer whole.Close()
	assert.Equal(t, Fingerprint(whole), Fingerprint(region), "views hash by content")

	empty := gocv.NewMat()
	defer empty.Close()
	assert.Equal(t, "empty", Fingerprint(empty))
}
