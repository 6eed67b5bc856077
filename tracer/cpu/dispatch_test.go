package cpu

import (
	"image"
	"sync"
	"testing"

	"github.com/achilleasa/voxtrace/scene"
	"github.com/achilleasa/voxtrace/tracer/traversal"
	"github.com/achilleasa/voxtrace/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSurface struct {
	sync.Mutex
	w, h   int
	pixels []types.Vec4
	writes []int
}

func newTestSurface(w, h int) *testSurface {
	return &testSurface{
		w:      w,
		h:      h,
		pixels: make([]types.Vec4, w*h),
		writes: make([]int, w*h),
	}
}

func (s *testSurface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.w, s.h)
}

func (s *testSurface) Set(x, y int, color types.Vec4) {
	s.Lock()
	defer s.Unlock()
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		panic("pixel out of bounds")
	}
	s.pixels[y*s.w+x] = color
	s.writes[y*s.w+x]++
}

func unitVoxelScene() *scene.Scene {
	return &scene.Scene{
		Nodes: []scene.Node{
			{Min: types.XYZ(0, 0, 0), Max: types.XYZ(1, 1, 1), Left: scene.NoNode, Right: scene.NoNode, Parent: scene.NoNode, FirstVoxel: 0, NumVoxels: 1},
		},
		Voxels: []scene.Voxel{{P: types.IVec3{0, 0, 0}}},
	}
}

func twoVoxelScene() *scene.Scene {
	return &scene.Scene{
		Nodes: []scene.Node{
			{Min: types.XYZ(0, 0, 0), Max: types.XYZ(2, 1, 1), Left: 1, Right: 2, Parent: scene.NoNode},
			{Min: types.XYZ(0, 0, 0), Max: types.XYZ(1, 1, 1), Left: scene.NoNode, Right: scene.NoNode, Parent: 0, FirstVoxel: 0, NumVoxels: 1},
			{Min: types.XYZ(1, 0, 0), Max: types.XYZ(2, 1, 1), Left: scene.NoNode, Right: scene.NoNode, Parent: 0, FirstVoxel: 1, NumVoxels: 1},
		},
		Voxels: []scene.Voxel{{P: types.IVec3{0, 0, 0}}, {P: types.IVec3{1, 0, 0}}},
	}
}

// A left-leaning chain of internal nodes sharing the unit box. Each internal
// node also owns a leaf for voxel 0 so rays must visit every level twice.
func skewedScene(depth int) *scene.Scene {
	sc := &scene.Scene{Voxels: []scene.Voxel{{P: types.IVec3{0, 0, 0}}}}
	unit := scene.Node{Min: types.XYZ(0, 0, 0), Max: types.XYZ(1, 1, 1), Left: scene.NoNode, Right: scene.NoNode, Parent: scene.NoNode}
	for i := 0; i < depth; i++ {
		sc.Nodes = append(sc.Nodes, unit)
		if i > 0 {
			sc.Nodes[i].Parent = int32(i - 1)
		}
	}
	leaf := func(parent int) int32 {
		n := unit
		n.Parent = int32(parent)
		n.SetVoxels(0, 1)
		sc.Nodes = append(sc.Nodes, n)
		return int32(len(sc.Nodes) - 1)
	}
	for i := 0; i < depth; i++ {
		left := int32(i + 1)
		if i == depth-1 {
			left = leaf(i)
		}
		sc.Nodes[i].SetChildNodes(left, leaf(i))
	}
	return sc
}

// A frustrum whose corner rays all point along dir.
func parallelFrustrum(dir types.Vec3) scene.Frustrum {
	return scene.Frustrum{dir, dir, dir, dir}
}

func TestPrimaryRayInterpolation(t *testing.T) {
	d := &Dispatcher{
		Frustrum: scene.Frustrum{
			types.XYZ(-1, 1, -1),  // TL
			types.XYZ(1, 1, -1),   // TR
			types.XYZ(-1, -1, -1), // BL
			types.XYZ(1, -1, -1),  // BR
		},
		Eye:    types.XYZ(1, 2, 3),
		FrameW: 2,
		FrameH: 2,
	}

	specs := []struct {
		x, y   uint32
		expDir types.Vec3
	}{
		{0, 0, types.XYZ(-0.5, 0.5, -1)},
		{1, 0, types.XYZ(0.5, 0.5, -1)},
		{0, 1, types.XYZ(-0.5, -0.5, -1)},
		{1, 1, types.XYZ(0.5, -0.5, -1)},
	}

	for index, spec := range specs {
		ray := d.PrimaryRay(spec.x, spec.y)
		exp := spec.expDir.Normalize()
		assert.Equal(t, d.Eye, ray.Origin, "spec %d", index)
		for axis := 0; axis < 3; axis++ {
			assert.InDelta(t, exp[axis], ray.Dir[axis], 1e-6, "spec %d", index)
		}
		assert.InDelta(t, 1.0, ray.Dir.Len(), 1e-6, "spec %d", index)
	}
}

func TestTracePixelOutOfBounds(t *testing.T) {
	d := &Dispatcher{
		Traverser: &traversal.Traverser{Scene: unitVoxelScene()},
		Frustrum:  parallelFrustrum(types.XYZ(0, 0, -1)),
		FrameW:    4,
		FrameH:    4,
	}

	_, ok := d.TracePixel(4, 0)
	assert.False(t, ok)
	_, ok = d.TracePixel(0, 4)
	assert.False(t, ok)
	_, ok = d.TracePixel(3, 3)
	assert.True(t, ok)
}

func TestDispatchBlockCoversEveryPixelOnce(t *testing.T) {
	// The frame dimensions are not tile multiples
	frameW, frameH := uint32(13), uint32(7)
	surface := newTestSurface(int(frameW), int(frameH))
	d := &Dispatcher{
		Traverser: &traversal.Traverser{Scene: unitVoxelScene()},
		Eye:       types.XYZ(0.5, 0.5, 5),
		Frustrum:  parallelFrustrum(types.XYZ(0, 0, -1)),
		FrameW:    frameW,
		FrameH:    frameH,
	}

	stats := d.DispatchBlock(surface, 0, 3)
	stats2 := d.DispatchBlock(surface, 3, frameH-3)
	assert.Equal(t, uint32(3*13), stats.HitPixels)
	assert.Equal(t, uint32(4*13), stats2.HitPixels)
	assert.Zero(t, stats.OverflowPixels+stats2.OverflowPixels)

	for index, count := range surface.writes {
		require.Equal(t, 1, count, "pixel %d", index)

		color := surface.pixels[index]
		assert.InDelta(t, 0.02, color[0], 1e-6)
		assert.InDelta(t, 0.02, color[1], 1e-6)
		assert.InDelta(t, 1.02, color[2], 1e-6)
		assert.Equal(t, float32(1), color[3])
	}
}

func TestDispatchBlockClampsToFrame(t *testing.T) {
	surface := newTestSurface(5, 5)
	d := &Dispatcher{
		Traverser: &traversal.Traverser{Scene: unitVoxelScene()},
		Eye:       types.XYZ(10, 10, 10),
		Frustrum:  parallelFrustrum(types.XYZ(0, 0, 1)),
		FrameW:    5,
		FrameH:    5,
		TileW:     3,
		TileH:     3,
	}

	stats := d.DispatchBlock(surface, 4, 10)
	assert.Zero(t, stats.HitPixels)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			exp := 0
			if y == 4 {
				exp = 1
			}
			assert.Equal(t, exp, surface.writes[y*5+x])
		}
	}

	// Escaping rays only carry the iteration tint
	assert.Equal(t, types.XYZW(0.02, 0.02, 0.02, 1), surface.pixels[4*5])
}

func TestDispatchBlockOverflowColor(t *testing.T) {
	surface := newTestSurface(4, 4)
	d := &Dispatcher{
		Traverser: &traversal.Traverser{Scene: twoVoxelScene(), MaxIterations: 2},
		Eye:       types.XYZ(-5, 0.5, 0.5),
		Frustrum:  parallelFrustrum(types.XYZ(1, 0, 0)),
		FrameW:    4,
		FrameH:    4,
	}

	stats := d.DispatchBlock(surface, 0, 4)
	assert.Equal(t, uint32(16), stats.OverflowPixels)
	assert.Zero(t, stats.HitPixels)
	for _, color := range surface.pixels {
		assert.Equal(t, types.XYZW(1, 0, 1, 1), color)
	}
}

func TestDispatchBlockDeepTreeOverflow(t *testing.T) {
	surface := newTestSurface(4, 2)
	d := &Dispatcher{
		Traverser: &traversal.Traverser{Scene: skewedScene(30)},
		Eye:       types.XYZ(0.5, 0.5, 5),
		Frustrum:  parallelFrustrum(types.XYZ(0, 0, -1)),
		FrameW:    4,
		FrameH:    2,
	}

	res, ok := d.TracePixel(0, 0)
	require.True(t, ok)
	assert.True(t, res.Overflow)
	assert.Equal(t, traversal.DefaultMaxIterations+1, res.Iterations)

	stats := d.DispatchBlock(surface, 0, 2)
	assert.Equal(t, uint32(8), stats.OverflowPixels)
	for _, color := range surface.pixels {
		assert.Equal(t, types.XYZW(1, 0, 1, 1), color)
	}
}
