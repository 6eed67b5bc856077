package renderer

import (
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/achilleasa/voxtrace/log"
	"github.com/achilleasa/voxtrace/scene"
	"github.com/achilleasa/voxtrace/tracer"
	"github.com/achilleasa/voxtrace/tracer/cpu"
)

// A renderer that splits each frame into row blocks and traces them in
// parallel using a pool of cpu tracers.
type defaultRenderer struct {
	logger log.Logger

	sync.Mutex

	options   Options
	scheduler tracer.BlockScheduler
	surface   Surface

	tracers          []tracer.Tracer
	blockAssignments []uint32

	stats FrameStats
}

// Create a new default renderer that draws into surface.
func NewDefault(sc *scene.Scene, camera *scene.Camera, scheduler tracer.BlockScheduler, surface Surface, opts Options) (Renderer, error) {
	if sc.Empty() {
		return nil, ErrSceneNotDefined
	}
	if camera == nil {
		return nil, ErrCameraNotDefined
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameSize
	}
	if surface == nil || surface.Bounds() != image.Rect(0, 0, int(opts.FrameW), int(opts.FrameH)) {
		return nil, ErrSurfaceMismatch
	}

	if opts.NumTracers <= 0 {
		opts.NumTracers = runtime.NumCPU()
	}
	if opts.NumTracers > int(opts.FrameH) {
		opts.NumTracers = int(opts.FrameH)
	}

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		options:   opts,
		scheduler: scheduler,
		surface:   surface,
		tracers:   make([]tracer.Tracer, 0, opts.NumTracers),
	}

	for index := 0; index < opts.NumTracers; index++ {
		tr := cpu.NewTracer(fmt.Sprintf("cpu-%d", index), cpu.Config{
			MaxIterations: opts.MaxIterations,
			TileW:         opts.TileW,
			TileH:         opts.TileH,
		})

		err := tr.Setup(opts.FrameW, opts.FrameH, surface)
		if err != nil {
			tr.Close()
			r.Close()
			return nil, err
		}

		tr.AppendChange(tracer.SetScene, sc)
		tr.AppendChange(tracer.SetCamera, camera)
		r.tracers = append(r.tracers, tr)
	}

	if len(r.tracers) == 0 {
		return nil, ErrNoTracers
	}

	r.logger.Noticef("attached %d tracers", len(r.tracers))
	return r, nil
}

// Render a frame.
func (r *defaultRenderer) Render() error {
	r.Lock()
	defer r.Unlock()

	return r.renderFrame()
}

// Render frame. This method is meant to be called while holding r.Lock()
func (r *defaultRenderer) renderFrame() error {
	if len(r.tracers) == 0 {
		return ErrNoTracers
	}

	start := time.Now()
	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	doneChan := make(chan uint32, len(r.tracers))
	errChan := make(chan error, len(r.tracers))

	var blockY uint32
	pending := 0
	for idx, tr := range r.tracers {
		blockH := r.blockAssignments[idx]
		if blockH == 0 {
			continue
		}

		tr.Enqueue(tracer.BlockRequest{
			BlockY:   blockY,
			BlockH:   blockH,
			DoneChan: doneChan,
			ErrChan:  errChan,
		})
		blockY += blockH
		pending++
	}

	// Wait for all tracers to finish; report the first error
	var err error
	for ; pending > 0; pending-- {
		select {
		case <-doneChan:
		case blockErr := <-errChan:
			if err == nil {
				err = blockErr
			}
		}
	}
	if err != nil {
		return err
	}

	r.collectStats(time.Since(start))
	return nil
}

func (r *defaultRenderer) collectStats(renderTime time.Duration) {
	r.stats = FrameStats{
		Tracers:    make([]TracerStat, len(r.tracers)),
		RenderTime: renderTime,
	}

	for idx, tr := range r.tracers {
		blockH := r.blockAssignments[idx]
		stat := TracerStat{
			Id:           tr.Id(),
			BlockH:       blockH,
			FramePercent: 100.0 * float32(blockH) / float32(r.options.FrameH),
		}

		// Tracers that received no rows keep stats from older frames
		if blockH != 0 {
			trStats := tr.Stats()
			stat.RenderTime = trStats.BlockTime
			stat.HitPixels = trStats.HitPixels
			stat.OverflowPixels = trStats.OverflowPixels
		}

		r.stats.Tracers[idx] = stat
		r.stats.HitPixels += stat.HitPixels
		r.stats.OverflowPixels += stat.OverflowPixels
	}
}

// Queue a camera update.
func (r *defaultRenderer) UpdateCamera(camera *scene.Camera) {
	r.Lock()
	defer r.Unlock()

	for _, tr := range r.tracers {
		tr.AppendChange(tracer.SetCamera, camera)
	}
}

// Queue a scene update. Tracers switch to the new scene when they start
// working on their next block so in-flight blocks always see a single
// scene.
func (r *defaultRenderer) UpdateScene(sc *scene.Scene) error {
	if sc.Empty() {
		return ErrSceneNotDefined
	}

	r.Lock()
	defer r.Unlock()

	for _, tr := range r.tracers {
		tr.AppendChange(tracer.SetScene, sc)
	}
	return nil
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	r.Lock()
	defer r.Unlock()

	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

// Get last frame stats.
func (r *defaultRenderer) Stats() FrameStats {
	r.Lock()
	defer r.Unlock()

	return r.stats
}
