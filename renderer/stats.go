package renderer

import "time"

type TracerStat struct {
	// The tracer id.
	Id string

	// The block height and the percentage of total frame area it represents.
	BlockH       uint32
	FramePercent float32

	// Render time for assigned block
	RenderTime time.Duration

	// Pixels whose ray hit a voxel or overflowed the traversal limits.
	HitPixels      uint32
	OverflowPixels uint32
}

type FrameStats struct {
	// Individual tracer stats.
	Tracers []TracerStat

	// Total render time for entire frame.
	RenderTime time.Duration

	// Totals over all tracers.
	HitPixels      uint32
	OverflowPixels uint32
}
