package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/achilleasa/voxtrace/types"
	"github.com/stretchr/testify/assert"
)

func TestFloatSurface(t *testing.T) {
	s := NewFloatSurface(3, 2)
	assert.Equal(t, image.Rect(0, 0, 3, 2), s.Bounds())

	s.Set(2, 1, types.XYZW(-1, 0.5, 2, 1))
	s.Set(3, 0, types.XYZW(1, 1, 1, 1))
	s.Set(-1, 0, types.XYZW(1, 1, 1, 1))

	assert.Equal(t, types.XYZW(-1, 0.5, 2, 1), s.At(2, 1))
	assert.Equal(t, types.Vec4{}, s.At(0, 0))
	assert.Equal(t, types.Vec4{}, s.At(5, 5))

	img := s.Image()
	assert.Equal(t, color.NRGBA{0, 128, 255, 255}, img.NRGBAAt(2, 1))
	assert.Equal(t, color.NRGBA{0, 0, 0, 0}, img.NRGBAAt(0, 0))
}

func TestImageSurface(t *testing.T) {
	s := NewImageSurface(4, 4)
	assert.Equal(t, image.Rect(0, 0, 4, 4), s.Bounds())

	s.Set(1, 2, types.XYZW(1, 0, 1, 1))
	assert.Equal(t, color.NRGBA{255, 0, 255, 255}, s.NRGBAAt(1, 2))

	s.Set(0, 0, types.XYZW(0.02, 0.02, 1.02, 1))
	assert.Equal(t, color.NRGBA{5, 5, 255, 255}, s.NRGBAAt(0, 0))
}
