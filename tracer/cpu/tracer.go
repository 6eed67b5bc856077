package cpu

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/achilleasa/voxtrace/log"
	"github.com/achilleasa/voxtrace/scene"
	"github.com/achilleasa/voxtrace/tracer"
	"github.com/achilleasa/voxtrace/tracer/traversal"
)

// Tracer options.
type Config struct {
	// Max traversal steps per ray; the traversal default is used if zero.
	MaxIterations int

	// Dispatch tile dimensions; the dispatcher defaults are used if zero.
	TileW, TileH uint32
}

type cpuTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The tracer id.
	id string

	cfg Config

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateLock   sync.Mutex
	updateBuffer map[tracer.ChangeType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered block.
	stats *tracer.Stats

	// Output frame.
	frameW, frameH uint32
	surface        tracer.Surface

	// Scene and camera snapshot used by the worker. Only the worker
	// touches these once it has started.
	sceneData *scene.Scene
	camera    *scene.Camera
}

// Create a new cpu tracer.
func NewTracer(id string, cfg Config) tracer.Tracer {
	return &cpuTracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		cfg:          cfg,
		blockReqChan: make(chan tracer.BlockRequest, 1),
		updateBuffer: make(map[tracer.ChangeType]interface{}, 0),
		stats:        &tracer.Stats{},
	}
}

// Get tracer id.
func (tr *cpuTracer) Id() string {
	return tr.id
}

// All cpu tracers run a single worker so they share the baseline speed.
func (tr *cpuTracer) SpeedEstimate() float32 {
	return 1.0
}

// Setup the tracer and start its worker.
func (tr *cpuTracer) Setup(frameW, frameH uint32, surface tracer.Surface) error {
	tr.Lock()
	defer tr.Unlock()

	if surface == nil || surface.Bounds() != image.Rect(0, 0, int(frameW), int(frameH)) {
		return ErrSurfaceMismatch
	}

	// The worker reads the frame setup so it must be stopped while we
	// swap it
	tr.stopWorker()
	tr.frameW, tr.frameH = frameW, frameH
	tr.surface = surface
	tr.startWorker()

	return nil
}

// Shutdown and cleanup tracer.
func (tr *cpuTracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	tr.stopWorker()
	tr.surface = nil
	tr.sceneData = nil
	tr.camera = nil
}

// Enqueue block request.
func (tr *cpuTracer) Enqueue(blockReq tracer.BlockRequest) {
	select {
	case tr.blockReqChan <- blockReq:
	default:
		tr.logger.Error("request processor did not receive block request")
		select {
		case blockReq.ErrChan <- ErrBusy:
		default:
		}
	}
}

// Append a change to the tracer's update buffer. Cameras are copied so
// callers can keep moving their camera while a frame is in flight.
func (tr *cpuTracer) AppendChange(changeType tracer.ChangeType, data interface{}) {
	if camera, ok := data.(*scene.Camera); ok && camera != nil {
		snapshot := *camera
		data = &snapshot
	}

	tr.updateLock.Lock()
	tr.updateBuffer[changeType] = data
	tr.updateLock.Unlock()
}

// Retrieve last block statistics.
func (tr *cpuTracer) Stats() *tracer.Stats {
	return tr.stats
}

// Commit queued changes.
func (tr *cpuTracer) commitUpdates() error {
	tr.updateLock.Lock()
	defer tr.updateLock.Unlock()

	for changeType, data := range tr.updateBuffer {
		switch changeType {
		case tracer.SetScene:
			sc, ok := data.(*scene.Scene)
			if !ok {
				return fmt.Errorf("cpu tracer: unexpected scene payload %T", data)
			}
			tr.sceneData = sc
		case tracer.SetCamera:
			camera, ok := data.(*scene.Camera)
			if !ok || camera == nil {
				return fmt.Errorf("cpu tracer: unexpected camera payload %T", data)
			}
			tr.camera = camera
		default:
			return fmt.Errorf("cpu tracer: unsupported change type %d", changeType)
		}
	}

	tr.updateBuffer = make(map[tracer.ChangeType]interface{}, 0)
	return nil
}

// Spawn a go-routine to process block render requests. This method is meant
// to be called while holding tr.Lock()
func (tr *cpuTracer) startWorker() {
	// Worker already running
	if tr.closeChan != nil {
		return
	}

	tr.closeChan = make(chan struct{}, 0)
	readyChan := make(chan struct{}, 0)
	tr.wg.Add(1)
	go func(closeChan chan struct{}) {
		defer tr.wg.Done()
		var blockReq tracer.BlockRequest
		var startTime time.Time
		var err error
		close(readyChan)
		for {
			select {
			case blockReq = <-tr.blockReqChan:
				// Apply any pending changes
				startTime = time.Now()
				err = tr.commitUpdates()
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}
				tr.stats.UpdateTime = time.Since(startTime)

				// Render block and reply with our completion status
				startTime = time.Now()
				err = tr.renderBlock(&blockReq)
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}
				tr.stats.BlockTime = time.Since(startTime)

				blockReq.DoneChan <- blockReq.BlockH
			case <-closeChan:
				return
			}
		}
	}(tr.closeChan)

	// Wait for go-routine to start
	<-readyChan
}

// Stop the worker and wait for it to exit. This method is meant to be
// called while holding tr.Lock()
func (tr *cpuTracer) stopWorker() {
	if tr.closeChan == nil {
		return
	}

	close(tr.closeChan)
	tr.wg.Wait()
	tr.closeChan = nil
}

// Render block.
func (tr *cpuTracer) renderBlock(blockReq *tracer.BlockRequest) error {
	switch {
	case tr.surface == nil:
		return ErrNotSetup
	case tr.sceneData == nil:
		return ErrNoSceneData
	case tr.camera == nil:
		return ErrNoCameraData
	case blockReq.BlockY+blockReq.BlockH > tr.frameH:
		return ErrInvalidBlock
	}

	dispatcher := &Dispatcher{
		Traverser: &traversal.Traverser{
			Scene:         tr.sceneData,
			MaxIterations: tr.cfg.MaxIterations,
		},
		Eye:      tr.camera.Position,
		Frustrum: tr.camera.Frustrum,
		FrameW:   tr.frameW,
		FrameH:   tr.frameH,
		TileW:    tr.cfg.TileW,
		TileH:    tr.cfg.TileH,
	}

	blockStats := dispatcher.DispatchBlock(tr.surface, blockReq.BlockY, blockReq.BlockH)

	tr.stats.BlockH = blockReq.BlockH
	tr.stats.HitPixels = blockStats.HitPixels
	tr.stats.OverflowPixels = blockStats.OverflowPixels
	if blockStats.OverflowPixels > 0 {
		tr.logger.Warningf("%d pixels in rows [%d, %d) exceeded the traversal limits", blockStats.OverflowPixels, blockReq.BlockY, blockReq.BlockY+blockReq.BlockH)
	}
	return nil
}
