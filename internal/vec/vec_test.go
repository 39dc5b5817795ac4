package vec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellOf_FloorsTowardNegativeInfinity(t *testing.T) {
	assert.Equal(t, Vec3{X: 1, Y: 0, Z: -1}, CellOf(1.9, 0.0, -0.1))
	assert.Equal(t, Vec3{X: -2, Y: -1, Z: 3}, CellOf(-1.5, -0.0001, 3.0))
}

func TestVec3Float_NormalizedZero(t *testing.T) {
	n := Vec3Float{}.Normalized()
	assert.True(t, n.IsZero())
	assert.False(t, math.IsNaN(n.X))
}

func TestVec3Float_Normalized(t *testing.T) {
	n := Vec3Float{X: 3, Y: 0, Z: 4}.Normalized()
	assert.InDelta(t, 0.6, n.X, 1e-9)
	assert.InDelta(t, 0.8, n.Z, 1e-9)
	assert.InDelta(t, 1.0, n.Length(), 1e-9)
}

func TestVec3Float_DistanceTo(t *testing.T) {
	a := Vec3Float{X: 1, Y: 2, Z: 3}
	b := Vec3Float{X: 1, Y: 2, Z: 8}
	assert.Equal(t, 5.0, a.DistanceTo(b))
	assert.Equal(t, Vec3Float{X: 1, Z: 3}, a.Flat())
}
