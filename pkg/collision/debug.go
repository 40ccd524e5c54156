package collision

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Debug tessellation resolution, independent of the shared topology.
const (
	debugSlices = 12
	debugBreaks = 24
)

// DebugCollision samples the surface at the debug resolution, places it in
// world space with matrix*offset and emits every quad and both caps.
func (c *ChamferCylinder) DebugCollision(matrix mgl32.Mat4, cb DebugFaceFunc) {
	var pool [debugBreaks * (debugSlices + 1)]mgl32.Vec3

	m := matrix.Mul4(c.offset)
	sliceStep := math32.Pi / debugSlices
	breakStep := 2 * math32.Pi / debugBreaks

	index := 0
	for j := 0; j <= debugSlices; j++ {
		sinA, cosA := math32.Sincos(float32(j) * sliceStep)
		rho := c.radius + c.height*sinA
		for i := 0; i < debugBreaks; i++ {
			sinB, cosB := math32.Sincos(float32(i) * breakStep)
			local := mgl32.Vec3{-c.height * cosA, rho * sinB, rho * cosB}
			pool[index] = mgl32.TransformCoordinate(local, m)
			index++
		}
	}

	var face [debugBreaks * 3]float32
	put := func(k int, p mgl32.Vec3) {
		face[3*k], face[3*k+1], face[3*k+2] = p[0], p[1], p[2]
	}

	index = 0
	for j := 0; j < debugSlices; j++ {
		index0 := index + debugBreaks - 1
		for i := 0; i < debugBreaks; i++ {
			put(0, pool[index])
			put(1, pool[index0])
			put(2, pool[index0+debugBreaks])
			put(3, pool[index+debugBreaks])
			index0 = index
			index++
			cb(4, face[:12], 0)
		}
	}

	for i := 0; i < debugBreaks; i++ {
		put(i, pool[i])
	}
	cb(debugBreaks, face[:], 0)

	last := len(pool) - 1
	for i := 0; i < debugBreaks; i++ {
		put(i, pool[last-i])
	}
	cb(debugBreaks, face[:], 0)
}
