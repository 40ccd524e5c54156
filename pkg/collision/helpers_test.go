package collision

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// fibonacciDirections returns n unit vectors spread evenly over the sphere,
// with X as the polar axis. None of them is exactly axial.
func fibonacciDirections(n int) []mgl32.Vec3 {
	golden := math32.Pi * (3 - math32.Sqrt(5))
	dirs := make([]mgl32.Vec3, n)
	for i := range dirs {
		x := 1 - (2*float32(i)+1)/float32(n)
		rho := math32.Sqrt(1 - x*x)
		s, c := math32.Sincos(golden * float32(i))
		dirs[i] = mgl32.Vec3{x, rho * s, rho * c}
	}
	return dirs
}

// newTestCylinder returns the reference shape used throughout the tests:
// outer radius 2, height 1, so core radius 1.5 and half-height 0.5.
func newTestCylinder(t *testing.T) *ChamferCylinder {
	t.Helper()
	c := NewChamferCylinder(2, 1, mgl32.Ident4())
	t.Cleanup(c.Release)
	return c
}
