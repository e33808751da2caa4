package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ImageFormat represents supported still-image frame formats.
type ImageFormat string

const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
)

// FormatFromPath infers the image format from a file extension.
//
// Returns:
//   - ImageFormat: The detected format.
//   - bool: false for unsupported extensions.
func FormatFromPath(path string) (ImageFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG, true
	case ".png":
		return FormatPNG, true
	case ".webp":
		return FormatWebP, true
	default:
		return "", false
	}
}

// DecodeImage decodes encoded image bytes of the given format.
//
// Arguments:
//   - data: The encoded image.
//   - format: One of FormatJPEG, FormatPNG, FormatWebP.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: An error if decoding fails or the format is unsupported.
func DecodeImage(data []byte, format ImageFormat) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	case FormatPNG:
		img, err = png.Decode(bytes.NewReader(data))
	case FormatWebP:
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		return nil, errors.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s image", format)
	}
	return img, nil
}

// DecodeFrame decodes an encoded still image into a BGR Mat of width x height.
//
// Images already at the requested size are not resampled. A non-positive
// width or height keeps the decoded size.
//
// Arguments:
//   - data: The encoded image.
//   - format: The image format.
//   - width, height: The frame size expected by the pipeline.
//
// Returns:
//   - gocv.Mat: The frame, owned by the caller.
//   - error: An error if decoding fails.
func DecodeFrame(data []byte, format ImageFormat, width, height int) (gocv.Mat, error) {
	img, err := DecodeImage(data, format)
	if err != nil {
		return gocv.NewMat(), err
	}

	b := img.Bounds()
	if width > 0 && height > 0 && (b.Dx() != width || b.Dy() != height) {
		img = resize.Resize(uint(width), uint(height), img, resize.Bilinear)
	}

	return ImageToMat(img)
}
