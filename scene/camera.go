package scene

import (
	"fmt"

	"github.com/achilleasa/voxtrace/types"
	"github.com/go-gl/mathgl/mgl32"
)

// Stores the ray directions at the four corners of the camera frustrum in
// TL, TR, BL, BR order where TL maps to the top-left pixel of the output
// surface. Per pixel rays are generated by bilinear interpolation of the
// corner rays.
type Frustrum [4]types.Vec3

func (fr Frustrum) String() string {
	return fmt.Sprintf(
		"Frustrum Rays:\nTL : %s\nTR : %s\nBL : %s\nBR : %s",
		fr[0], fr[1], fr[2], fr[3],
	)
}

// The camera type controls the scene camera.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Vertical field of view in degrees.
	FOV float32

	Frustrum Frustrum
}

func NewCamera(fov float32) *Camera {
	return &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
	}
}

// Recalculate the frustrum corner rays for the given aspect ratio.
func (c *Camera) SetupProjection(aspect float32) {
	projMat := mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, 0.1, 1000)
	viewMat := mgl32.LookAtV(mgl32.Vec3(c.Position), mgl32.Vec3(c.LookAt), mgl32.Vec3(c.Up))
	invProjViewMat := projMat.Mul4(viewMat).Inv()

	corner := func(x, y float32) types.Vec3 {
		v := invProjViewMat.Mul4x1(mgl32.Vec4{x, y, -1, 1})
		v = v.Mul(1.0 / v[3])
		return types.Vec3(v.Vec3()).Sub(c.Position)
	}

	c.Frustrum[0] = corner(-1, 1)
	c.Frustrum[1] = corner(1, 1)
	c.Frustrum[2] = corner(-1, -1)
	c.Frustrum[3] = corner(1, -1)
}
