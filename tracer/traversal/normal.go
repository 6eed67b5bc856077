package traversal

import (
	"github.com/achilleasa/voxtrace/types"
	"github.com/chewxy/math32"
)

// The max distance between a hit point and a voxel face plane for the
// point to be considered as lying on that face.
const NormalEpsilon float32 = 1e-4

var faceNormals = [6]types.Vec3{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// EstimateNormal returns the outward normal of the voxel face that contains
// the hit point. Faces are tested in -X, +X, -Y, +Y, -Z, +Z order and the
// first match wins, so points on edges and corners always resolve to the
// earliest face in that list. The zero vector is returned if the point does
// not lie on any face.
func EstimateNormal(hit types.Vec3, voxel types.IVec3) types.Vec3 {
	lo := voxel.Vec3()
	for face, normal := range faceNormals {
		axis := face / 2
		plane := lo[axis]
		if face%2 == 1 {
			plane += 1
		}
		if math32.Abs(hit[axis]-plane) < NormalEpsilon {
			return normal
		}
	}
	return types.Vec3{}
}
