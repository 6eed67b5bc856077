package traversal

import (
	"github.com/achilleasa/voxtrace/scene"
	"github.com/achilleasa/voxtrace/types"
)

// IntersectBox runs a slab test of a ray against the box [boxMin, boxMax].
//
// The ray is accepted if its entry distance is smaller than *t, its exit
// distance is not negative and it enters before it exits. On acceptance *t
// is set to the entry distance and true is returned; otherwise *t is left
// untouched.
//
// invDir must hold the componentwise reciprocal of the ray direction.
// Axis-parallel rays rely on the IEEE-754 infinities in invDir; they are not
// special-cased.
func IntersectBox(origin, invDir, boxMin, boxMax types.Vec3, t *float32) bool {
	var tNear, tFar types.Vec3
	for axis := 0; axis < 3; axis++ {
		m1 := (boxMin[axis] - origin[axis]) * invDir[axis]
		m2 := (boxMax[axis] - origin[axis]) * invDir[axis]

		// A negative direction swaps the near and far planes.
		flip := invDir[axis] < 0
		tNear[axis] = selectf(flip, m2, m1)
		tFar[axis] = selectf(flip, m1, m2)
	}

	entry := maxf(maxf(tNear[0], tNear[1]), tNear[2])
	exit := minf(minf(tFar[0], tFar[1]), tFar[2])
	if entry < *t && exit >= 0 && entry < exit {
		*t = entry
		return true
	}
	return false
}

// IntersectLeaf tests the ray against every voxel in the range
// [first, first+count) and keeps the nearest one that is closer than *t.
// It returns the coordinate of that voxel and true if any voxel was hit;
// *t then holds the entry distance to it. The range is clipped to the voxel
// slice.
func IntersectLeaf(voxels []scene.Voxel, first, count int32, origin, invDir types.Vec3, t *float32) (types.IVec3, bool) {
	var (
		nearest types.IVec3
		found   bool
	)
	last := int64(first) + int64(count)
	if last > int64(len(voxels)) {
		last = int64(len(voxels))
	}
	if first < 0 {
		first = 0
	}
	for index := int64(first); index < last; index++ {
		p := voxels[index].P
		if IntersectBox(origin, invDir, p.Vec3(), p.AddScalar(1).Vec3(), t) {
			nearest = p
			found = true
		}
	}
	return nearest, found
}

func selectf(cond bool, a, b float32) float32 {
	if cond {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if b > a {
		return b
	}
	return a
}

func minf(a, b float32) float32 {
	if b < a {
		return b
	}
	return a
}
