package traversal

import "github.com/achilleasa/voxtrace/types"

// A ray with a unit length direction and its precomputed componentwise
// reciprocal. Zero direction components map to signed infinities.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
	InvDir types.Vec3
}

// Create a ray from an origin and a (not necessarily normalized) direction.
func NewRay(origin, dir types.Vec3) Ray {
	dir = dir.Normalize()
	return Ray{
		Origin: origin,
		Dir:    dir,
		InvDir: dir.Recip(),
	}
}

// Get the point at distance t along the ray.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}
