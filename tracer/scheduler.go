package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of tracers using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each tracer
	// in the input list. Assignments always add up to frameH.
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The naive scheduler splits the frame using the tracer speed estimates.
type naiveScheduler struct{}

// Create a new naive scheduler instance.
func NewNaiveScheduler() BlockScheduler {
	return naiveScheduler{}
}

func (sch naiveScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	return scheduleBySpeed(tracers, frameH)
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance
func NewPerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool
// of tracers using feedback collected from previous frames.
//
// This function returns the block height assignment for each tracer in the
// input list. When previous frame information is available the scheduler
// uses the following formula for estimating the workload for tracer w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	// If this is the first time we try to schedule or the number of tracers
	// has changed we need to reset the block assignments
	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = scheduleBySpeed(tracers, frameH)
		return sch.blockAssignment
	}

	// Use last frame statistics
	rates := make([]float64, len(tracers))
	var total float64
	for idx, tr := range tracers {
		stats := tr.Stats()
		blockTime := float64(stats.BlockTime)
		if blockTime <= 0 {
			blockTime = 1
		}
		rates[idx] = float64(stats.BlockH) / blockTime
		total += rates[idx]
	}

	// No usable stats; fall back to the speed estimates
	if total <= 0 {
		sch.blockAssignment = scheduleBySpeed(tracers, frameH)
		return sch.blockAssignment
	}

	sch.blockAssignment = distribute(rates, total, frameH)
	return sch.blockAssignment
}

func scheduleBySpeed(tracers []Tracer, frameH uint32) []uint32 {
	weights := make([]float64, len(tracers))
	var total float64
	for idx, tr := range tracers {
		weights[idx] = float64(tr.SpeedEstimate())
		total += weights[idx]
	}

	return distribute(weights, total, frameH)
}

// Split frameH rows proportionally to weights. Each entry receives at least
// one row as long as there are enough rows to go around.
func distribute(weights []float64, total float64, frameH uint32) []uint32 {
	blockAssignment := make([]uint32, len(weights))
	if len(weights) == 0 {
		return blockAssignment
	}

	// Split evenly if we know nothing about the tracers
	if total <= 0 {
		for idx := range weights {
			weights[idx] = 1
		}
		total = float64(len(weights))
	}

	var scheduledRows uint32
	scaler := float64(frameH) / total
	for idx, w := range weights {
		blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(w*scaler)))
		scheduledRows += blockAssignment[idx]
	}

	// In case rows don't add up to the frame height append the missing ones to the first tracer
	if scheduledRows <= frameH {
		blockAssignment[0] += frameH - scheduledRows
		return blockAssignment
	}

	// The min row guarantee overbooked the frame; take rows back starting
	// from the last tracer.
	for excess := scheduledRows - frameH; excess > 0; {
		for idx := len(blockAssignment) - 1; idx >= 0 && excess > 0; idx-- {
			if blockAssignment[idx] > 1 || frameH < uint32(len(blockAssignment)) {
				if blockAssignment[idx] == 0 {
					continue
				}
				blockAssignment[idx]--
				excess--
			}
		}
	}

	return blockAssignment
}
