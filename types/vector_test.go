package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipKeepsSignedInfinity(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	r := XYZ(0, negZero, -2).Recip()

	assert.True(t, math.IsInf(float64(r[0]), 1), "expected +Inf for +0 component; got %v", r[0])
	assert.True(t, math.IsInf(float64(r[1]), -1), "expected -Inf for -0 component; got %v", r[1])
	assert.Equal(t, float32(-0.5), r[2])
}

func TestNormalize(t *testing.T) {
	n := XYZ(3, 0, 4).Normalize()
	assert.InDelta(t, 0.6, n[0], 1e-6)
	assert.InDelta(t, 0.8, n[2], 1e-6)

	assert.Equal(t, Vec3{}, Vec3{}.Normalize(), "zero vector")
}

func TestLerp(t *testing.T) {
	a := XYZ(0, 0, 0)
	b := XYZ(2, 4, -8)
	assert.Equal(t, XYZ(1, 2, -4), a.Lerp(b, 0.5))
	assert.Equal(t, a, a.Lerp(b, 0))
	assert.Equal(t, b, a.Lerp(b, 1))
}

func TestUnmarshalText(t *testing.T) {
	var v Vec3
	require.NoError(t, v.UnmarshalText([]byte("0.5, 0.5 5")))
	assert.Equal(t, XYZ(0.5, 0.5, 5), v)

	assert.Error(t, v.UnmarshalText([]byte("1 2")))
	assert.Error(t, v.UnmarshalText([]byte("1 2 z")))
}

func TestMinMax(t *testing.T) {
	a := XYZ(1, -2, 3)
	b := XYZ(-1, 2, 3)
	assert.Equal(t, XYZ(-1, -2, 3), MinVec3(a, b))
	assert.Equal(t, XYZ(1, 2, 3), MaxVec3(a, b))
	assert.Equal(t, XYZ(1, 2, 4), IVec3{0, 1, 3}.AddScalar(1).Vec3())
}
