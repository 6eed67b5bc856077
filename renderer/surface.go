package renderer

import (
	"image"
	"image/color"

	"github.com/achilleasa/voxtrace/tracer"
	"github.com/achilleasa/voxtrace/types"
	"github.com/chewxy/math32"
)

// A Surface receives the traced pixel colors.
type Surface = tracer.Surface

// A surface that keeps the unclamped colors.
type FloatSurface struct {
	rect image.Rectangle
	Pix  []types.Vec4
}

func NewFloatSurface(w, h int) *FloatSurface {
	return &FloatSurface{
		rect: image.Rect(0, 0, w, h),
		Pix:  make([]types.Vec4, w*h),
	}
}

func (s *FloatSurface) Bounds() image.Rectangle {
	return s.rect
}

func (s *FloatSurface) Set(x, y int, c types.Vec4) {
	if !(image.Point{x, y}.In(s.rect)) {
		return
	}
	s.Pix[y*s.rect.Dx()+x] = c
}

// Get the color at (x, y). Pixels outside the surface are transparent black.
func (s *FloatSurface) At(x, y int) types.Vec4 {
	if !(image.Point{x, y}.In(s.rect)) {
		return types.Vec4{}
	}
	return s.Pix[y*s.rect.Dx()+x]
}

// Convert the surface contents to an 8-bit image.
func (s *FloatSurface) Image() *image.NRGBA {
	img := image.NewNRGBA(s.rect)
	for y := 0; y < s.rect.Dy(); y++ {
		for x := 0; x < s.rect.Dx(); x++ {
			img.SetNRGBA(x, y, toNRGBA(s.Pix[y*s.rect.Dx()+x]))
		}
	}
	return img
}

// A surface backed by an 8-bit image. Color components are clamped to [0, 1].
type ImageSurface struct {
	*image.NRGBA
}

func NewImageSurface(w, h int) *ImageSurface {
	return &ImageSurface{
		NRGBA: image.NewNRGBA(image.Rect(0, 0, w, h)),
	}
}

func (s *ImageSurface) Set(x, y int, c types.Vec4) {
	s.NRGBA.SetNRGBA(x, y, toNRGBA(c))
}

func toNRGBA(c types.Vec4) color.NRGBA {
	return color.NRGBA{
		R: unorm8(c[0]),
		G: unorm8(c[1]),
		B: unorm8(c[2]),
		A: unorm8(c[3]),
	}
}

func unorm8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	return uint8(math32.Round(math32.Min(v, 1) * 255))
}
