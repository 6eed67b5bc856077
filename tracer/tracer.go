package tracer

import (
	"image"
	"time"

	"github.com/achilleasa/voxtrace/types"
)

type ChangeType uint8

const (
	// Replace the scene; the payload is a *scene.Scene.
	SetScene ChangeType = iota

	// Replace the camera; the payload is a *scene.Camera with an up to
	// date frustrum.
	SetCamera
)

// A Surface receives the traced pixel colors. Implementations must allow
// concurrent Set calls for distinct pixels.
type Surface interface {
	Bounds() image.Rectangle
	Set(x, y int, color types.Vec4)
}

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for rendering the last block and for applying the pending
	// changes before it.
	BlockTime  time.Duration
	UpdateTime time.Duration

	// Number of pixels in the last block whose ray hit a voxel or
	// overflowed the traversal limits.
	HitPixels      uint32
	OverflowPixels uint32
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Get the tracers computation speed estimate compared to a
	// baseline (single goroutine) implementation.
	SpeedEstimate() float32

	// Setup the tracer to render frames of the given dimensions into surface.
	Setup(frameW, frameH uint32, surface Surface) error

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Append a change to the tracer's update buffer. Changes are applied
	// before the next block is rendered; later changes of the same type
	// overwrite earlier ones.
	AppendChange(ChangeType, interface{})

	// Retrieve last block statistics.
	Stats() *Stats
}
