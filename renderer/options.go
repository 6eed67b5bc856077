package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Max traversal steps per ray. Rays that need more steps are drawn
	// with the overflow color.
	MaxIterations int

	// Dispatch tile dimensions.
	TileW uint32
	TileH uint32

	// Number of cpu tracers to attach; one per cpu if zero.
	NumTracers int
}
