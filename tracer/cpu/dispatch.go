package cpu

import (
	"github.com/achilleasa/voxtrace/scene"
	"github.com/achilleasa/voxtrace/tracer"
	"github.com/achilleasa/voxtrace/tracer/traversal"
	"github.com/achilleasa/voxtrace/types"
)

// Default dispatch tile dimensions.
const (
	DefaultTileW uint32 = 8
	DefaultTileH uint32 = 4
)

// A Dispatcher maps output pixels to primary rays, traces them and writes
// the resulting debug colors to a surface. Pixels are processed in tiles;
// every pixel is traced independently of all the others.
type Dispatcher struct {
	Traverser *traversal.Traverser

	// Ray origin and the frustrum corner ray directions.
	Eye      types.Vec3
	Frustrum scene.Frustrum

	FrameW, FrameH uint32

	// Tile dimensions; DefaultTileW x DefaultTileH if zero.
	TileW, TileH uint32
}

// Per block counters.
type BlockStats struct {
	HitPixels      uint32
	OverflowPixels uint32
}

// Get the primary ray for pixel (x, y). The ray direction is obtained by
// bilinear interpolation of the frustrum corner rays at the pixel center:
// the top and bottom edges are interpolated horizontally first and the
// results are then interpolated vertically.
func (d *Dispatcher) PrimaryRay(x, y uint32) traversal.Ray {
	u := (float32(x) + 0.5) / float32(d.FrameW)
	v := (float32(y) + 0.5) / float32(d.FrameH)

	top := d.Frustrum[0].Lerp(d.Frustrum[1], u)
	bottom := d.Frustrum[2].Lerp(d.Frustrum[3], u)
	return traversal.NewRay(d.Eye, top.Lerp(bottom, v))
}

// Trace a single pixel. Returns false if the pixel lies outside the frame.
func (d *Dispatcher) TracePixel(x, y uint32) (traversal.Result, bool) {
	if x >= d.FrameW || y >= d.FrameH {
		return traversal.Result{}, false
	}
	return d.Traverser.Trace(d.PrimaryRay(x, y)), true
}

// Trace all pixels in rows [blockY, blockY+blockH) and write their colors to
// surface. Tiles overlapping the block or frame edges skip the pixels that
// lie outside.
func (d *Dispatcher) DispatchBlock(surface tracer.Surface, blockY, blockH uint32) BlockStats {
	tileW, tileH := d.TileW, d.TileH
	if tileW == 0 {
		tileW = DefaultTileW
	}
	if tileH == 0 {
		tileH = DefaultTileH
	}

	blockEnd := blockY + blockH
	if blockEnd > d.FrameH {
		blockEnd = d.FrameH
	}

	var stats BlockStats
	for tileY := blockY; tileY < blockEnd; tileY += tileH {
		for tileX := uint32(0); tileX < d.FrameW; tileX += tileW {
			for ly := uint32(0); ly < tileH; ly++ {
				y := tileY + ly
				if y >= blockEnd {
					break
				}
				for lx := uint32(0); lx < tileW; lx++ {
					res, ok := d.TracePixel(tileX+lx, y)
					if !ok {
						break
					}

					if res.Overflow {
						stats.OverflowPixels++
					} else if res.Hit {
						stats.HitPixels++
					}
					surface.Set(int(tileX+lx), int(y), res.Color())
				}
			}
		}
	}

	return stats
}
