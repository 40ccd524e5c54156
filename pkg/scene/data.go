package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is a scene-space vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Vec returns v in single precision.
func (v Vec3) Vec() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

func (v Vec3) finite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ---------------------------------------------------------------------------
// Shape
// ---------------------------------------------------------------------------

// ChamferCylinderData describes a chamfer cylinder body. Radius is the
// outer radius and Height the full extent along the local X axis.
type ChamferCylinderData struct {
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
	UserID uint32  `json:"user_id,omitempty"`
}

func (ChamferCylinderData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData places its children. Created by the (place ...) form.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// Matrix returns T * Rz * Ry * Rx: the rotation is applied first, about the
// X, Y and Z axes in that order, then the translation.
func (td TransformData) Matrix() mgl32.Mat4 {
	m := mgl32.Ident4()
	if td.Translation != nil {
		t := td.Translation.Vec()
		m = mgl32.Translate3D(t[0], t[1], t[2])
	}
	if td.Rotation != nil {
		r := td.Rotation.Vec()
		rot := mgl32.HomogRotate3DZ(mgl32.DegToRad(r[2])).
			Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(r[1]))).
			Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(r[0])))
		m = m.Mul4(rot)
	}
	return m
}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData is a logical grouping. Created by the (group ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
