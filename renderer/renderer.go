package renderer

import "github.com/achilleasa/voxtrace/scene"

type Renderer interface {
	// Render frame.
	Render() error

	// Queue a camera update for the next frame. The camera frustrum must
	// already be set up for the frame aspect ratio.
	UpdateCamera(*scene.Camera)

	// Queue a scene update for the next frame.
	UpdateScene(*scene.Scene) error

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
