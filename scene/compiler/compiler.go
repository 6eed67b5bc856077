package compiler

import (
	"errors"
	"time"

	"github.com/achilleasa/voxtrace/log"
	"github.com/achilleasa/voxtrace/scene"
	"github.com/achilleasa/voxtrace/types"
)

const (
	// The default max number of voxels stored in a single BVH leaf.
	DefaultMaxLeafVoxels = 4
)

var (
	ErrNoVoxels = errors.New("compiler: no voxels to compile")
)

// Compile a list of voxel grid coordinates into a scene whose BVH leafs
// reference contiguous ranges of the scene voxel list. Duplicate
// coordinates are collapsed into a single voxel.
func Compile(coords []types.IVec3, maxLeafVoxels int) (*scene.Scene, error) {
	logger := log.New("scene compiler")
	if maxLeafVoxels < 1 {
		maxLeafVoxels = DefaultMaxLeafVoxels
	}

	start := time.Now()
	logger.Noticef("compiling scene (%d voxels)", len(coords))

	seen := make(map[types.IVec3]struct{}, len(coords))
	volList := make([]BoundedVolume, 0, len(coords))
	for _, p := range coords {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		volList = append(volList, scene.Voxel{P: p})
	}

	if len(volList) == 0 {
		return nil, ErrNoVoxels
	}
	if dups := len(coords) - len(volList); dups > 0 {
		logger.Infof("dropped %d duplicate voxels", dups)
	}

	sc := &scene.Scene{
		Voxels: make([]scene.Voxel, 0, len(volList)),
	}

	// Leafs are created in depth-first order so appending their voxels
	// yields non-overlapping contiguous ranges.
	sc.Nodes = Build(volList, maxLeafVoxels, func(leaf *scene.Node, itemList []BoundedVolume) {
		leaf.SetVoxels(int32(len(sc.Voxels)), int32(len(itemList)))
		for _, item := range itemList {
			sc.Voxels = append(sc.Voxels, item.(scene.Voxel))
		}
	}, SurfaceAreaHeuristic)

	logger.Noticef("compiled scene in %d ms (%d nodes)", time.Since(start).Nanoseconds()/1e6, len(sc.Nodes))
	return sc, nil
}
