// Package images - Mat helpers shared by the frame sources and the pipeline.
package images

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrEmptyFrame is returned when a nil or empty frame is handed to a helper.
var ErrEmptyFrame = errors.New("frame is empty")

// Bounds returns the full extent of a Mat as an image.Rectangle.
func Bounds(mat gocv.Mat) image.Rectangle {
	return image.Rect(0, 0, mat.Cols(), mat.Rows())
}

// CropRegion returns a view of frame restricted to zone.
//
// The zone is clipped to the frame. The returned Mat shares memory with frame
// and must be closed by the caller.
//
// Arguments:
//   - frame: The full frame.
//   - zone: The region of interest in frame coordinates.
//
// Returns:
//   - gocv.Mat: The region view.
//   - image.Point: The origin of the clipped region, used to translate results back.
//   - error: ErrEmptyFrame if the frame is empty or the zone misses the frame.
func CropRegion(frame gocv.Mat, zone image.Rectangle) (gocv.Mat, image.Point, error) {
	if frame.Empty() {
		return gocv.NewMat(), image.Point{}, ErrEmptyFrame
	}
	clipped := zone.Canon().Intersect(Bounds(frame))
	if clipped.Empty() {
		return gocv.NewMat(), image.Point{}, errors.Wrapf(ErrEmptyFrame, "zone %v outside frame %v", zone, Bounds(frame))
	}
	return frame.Region(clipped), clipped.Min, nil
}

// ResizeMat replaces src with a copy resized to width x height when its size differs.
//
// Arguments:
//   - src: The Mat to resize.
//   - width, height: Target dimensions. Non-positive values leave src untouched.
//
// Returns:
//   - bool: true if src was resized.
func ResizeMat(src *gocv.Mat, width, height int) bool {
	if width <= 0 || height <= 0 || src.Empty() {
		return false
	}
	if src.Cols() == width && src.Rows() == height {
		return false
	}
	dst := gocv.NewMat()
	gocv.Resize(*src, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	src.Close()
	*src = dst
	return true
}

// ImageToMat converts an image.Image to a 3 channel BGR gocv.Mat.
//
// Arguments:
//   - img: The decoded image.
//
// Returns:
//   - gocv.Mat: The BGR Mat, owned by the caller.
//   - error: ErrEmptyFrame if img is nil.
func ImageToMat(img image.Image) (gocv.Mat, error) {
	if img == nil {
		return gocv.NewMat(), ErrEmptyFrame
	}

	bounds := img.Bounds()
	mat := gocv.NewMatWithSize(bounds.Dy(), bounds.Dx(), gocv.MatTypeCV8UC3)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			row, col := y-bounds.Min.Y, (x-bounds.Min.X)*3
			mat.SetUCharAt(row, col+0, uint8(b>>8))
			mat.SetUCharAt(row, col+1, uint8(g>>8))
			mat.SetUCharAt(row, col+2, uint8(r>>8))
		}
	}

	return mat, nil
}

// Fingerprint hashes a Mat's geometry, type and pixels. Two Mats with the
// same content share a fingerprint. An empty Mat yields "empty".
func Fingerprint(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}
	if !mat.IsContinuous() {
		mat = mat.Clone()
		defer mat.Close()
	}

	hash := sha256.New()
	fmt.Fprintf(hash, "%dx%d:%d:", mat.Cols(), mat.Rows(), mat.Type())
	hash.Write(mat.ToBytes())
	return hex.EncodeToString(hash.Sum(nil))
}
