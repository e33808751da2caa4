package common

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBoundingBox(t *testing.T) {
	tests := []struct {
		name     string
		rect     image.Rectangle
		expected BoundingBox
	}{
		{
			name:     "canonical rectangle",
			rect:     image.Rect(10, 20, 50, 70),
			expected: BoundingBox{X: 10, Y: 20, Width: 40, Height: 50},
		},
		{
			name:     "inverted rectangle is canonicalized",
			rect:     image.Rectangle{Min: image.Pt(50, 70), Max: image.Pt(10, 20)},
			expected: BoundingBox{X: 10, Y: 20, Width: 40, Height: 50},
		},
		{
			name:     "empty rectangle",
			rect:     image.Rectangle{},
			expected: BoundingBox{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewBoundingBox(tt.rect))
		})
	}
}

func TestBoundingBox_Edges(t *testing.T) {
	box := BoundingBox{X: 5, Y: 100, Width: 30, Height: 50}

	assert.Equal(t, 100, box.Top())
	assert.Equal(t, 150, box.Bottom())
	assert.Equal(t, 1500, box.Area())
	assert.Equal(t, image.Rect(5, 100, 35, 150), box.ToRect())
	assert.Equal(t, box, NewBoundingBox(box.ToRect()), "round trip through image.Rectangle")
}

func TestBoundingBox_Offset(t *testing.T) {
	box := BoundingBox{X: 5, Y: 10, Width: 30, Height: 50}

	moved := box.Offset(image.Pt(100, 200))

	assert.Equal(t, BoundingBox{X: 105, Y: 210, Width: 30, Height: 50}, moved)
	assert.Equal(t, 5, box.X, "receiver must not be mutated")
}

func TestBoundingBox_String(t *testing.T) {
	assert.Equal(t, "(1, 2) 3x4", BoundingBox{X: 1, Y: 2, Width: 3, Height: 4}.String())
}
