package collision

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
)

// RayMiss is the fraction returned by RayCast when the segment does not hit
// the shape. Any fraction greater than 1 means no intersection.
const RayMiss float32 = 1.2

// ShapeID tags a shape family. It is the first word of a shape signature
// and of the serialized shape header.
type ShapeID uint32

const (
	NullShape ShapeID = iota
	ChamferCylinderShape
)

func (id ShapeID) String() string {
	switch id {
	case NullShape:
		return "null"
	case ChamferCylinderShape:
		return "chamfer-cylinder"
	default:
		return fmt.Sprintf("ShapeID(%d)", uint32(id))
	}
}

// ContactPoint is a point on a shape boundary produced by a query.
type ContactPoint struct {
	Point  mgl32.Vec3
	Normal mgl32.Vec3 // unit length, pointing out of the shape
	UserID uint32     // material or face attribute assigned by the caller
}

// RayPreFilter is consulted before any ray geometry work. Returning false
// rejects the cast, which then reports RayMiss.
type RayPreFilter func(body any, shape Shape, userData any) bool

// DebugFaceFunc receives one polygon of a debug tessellation. face holds
// vertexCount packed (x, y, z) triples and is only valid during the call.
// faceID is 0 for faces generated by the rounding.
type DebugFaceFunc func(vertexCount int, face []float32, faceID uint32)

// Shape is a convex collision primitive in shape-local space.
type Shape interface {
	// SupportVertex returns the boundary point farthest along the unit
	// direction dir.
	SupportVertex(dir mgl32.Vec3) mgl32.Vec3

	// RayCast intersects the segment q0->q1 with the shape. It returns the
	// hit fraction in [0, 1] and fills contact, or RayMiss.
	RayCast(q0, q1 mgl32.Vec3, contact *ContactPoint, preFilter RayPreFilter, body, userData any) float32

	// CalculatePlaneIntersection writes up to two boundary points lying on
	// the plane through origin with the given unit normal, and returns how
	// many it wrote.
	CalculatePlaneIntersection(normal, origin mgl32.Vec3, contacts []mgl32.Vec3) int

	// DebugCollision emits a coarse world-space tessellation.
	DebugCollision(matrix mgl32.Mat4, cb DebugFaceFunc)

	CalculateSignature() uint32
	CalcAABB(matrix mgl32.Mat4) (min, max mgl32.Vec3)
	Volume() float32
	Info() ShapeInfo
	Serialize(w io.Writer) error

	// Release drops the shape's hold on shared resources. The shape must
	// not be used afterwards.
	Release()
}
