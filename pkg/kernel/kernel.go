// Package kernel defines the abstract geometry kernel interface used to
// build reference solids for collision shapes. Implementations (sdfx)
// provide exact solid modeling behind this interface, so tools can compare
// a collision shape's own tessellation against an independent model.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)

	// Distance returns the signed distance from p to the surface,
	// negative inside.
	Distance(p [3]float64) float64
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// ChamferCylinder creates a cylinder about the X axis with the given
	// outer radius and full height whose rim is rounded with a radius of
	// half the height.
	ChamferCylinder(radius, height float64) Solid

	Union(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
