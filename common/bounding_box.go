package common

import (
	"fmt"
	"image"
)

// BoundingBox represents an axis-aligned box in pixel coordinates.
type BoundingBox struct {
	X, Y          int
	Width, Height int
}

// NewBoundingBox builds a BoundingBox from an image.Rectangle.
//
// Arguments:
// - r: The rectangle to convert. It is canonicalized first.
//
// Returns:
// - The equivalent BoundingBox.
//
// @example
// box := NewBoundingBox(image.Rect(10, 20, 50, 70))
// fmt.Println(box) // (10, 20) 40x50
func NewBoundingBox(r image.Rectangle) BoundingBox {
	r = r.Canon()
	return BoundingBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d, %d) %dx%d", b.X, b.Y, b.Width, b.Height)
}

// ToRect converts the bounding box to an image.Rectangle.
//
// Returns:
// - An image.Rectangle spanning [X, X+Width) x [Y, Y+Height).
//
// @example
// box := BoundingBox{X: 100, Y: 100, Width: 100, Height: 200}
// rect := box.ToRect()
// fmt.Printf("Rectangle: %v\n", rect) // Rectangle: (100,100)-(200,300)
func (b BoundingBox) ToRect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Top returns the y-coordinate of the upper edge.
func (b BoundingBox) Top() int { return b.Y }

// Bottom returns the y-coordinate one past the lower edge.
func (b BoundingBox) Bottom() int { return b.Y + b.Height }

// Area returns Width * Height in pixels.
func (b BoundingBox) Area() int { return b.Width * b.Height }

// Offset translates the box by the given origin.
//
// This is used to map a box found inside a region of interest back into
// full-frame coordinates.
//
// Arguments:
// - origin: The top-left corner of the region the box was measured in.
//
// Returns:
// - The translated BoundingBox.
func (b BoundingBox) Offset(origin image.Point) BoundingBox {
	b.X += origin.X
	b.Y += origin.Y
	return b
}

// Candidate is the single motion region selected from a frame.
type Candidate struct {
	// Box is the bounding box of the contour in ROI coordinates.
	Box BoundingBox
	// Area is the contour area in pixels.
	Area float64
}
