package collision

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// minChamferRadius keeps the core disk from collapsing when the
	// rounding consumes the whole requested radius.
	minChamferRadius = 0.001

	// axialThreshold selects the cap branch of the support mapping.
	axialThreshold = 0.9998
)

// ChamferCylinder is a cylinder about the local X axis whose rim is rounded
// by an arc of radius equal to its half-height. Geometrically it is a disk of
// radius Radius() swept by a sphere of radius HalfHeight().
type ChamferCylinder struct {
	cache      *TopologyCache
	hull       convexHull
	radius     float32 // core disk radius
	height     float32 // half-height, also the rounding radius
	offset     mgl32.Mat4
	silhouette [4]mgl32.Vec2
	userID     uint32
}

var _ Shape = (*ChamferCylinder)(nil)

// NewChamferCylinder creates a chamfer cylinder with the given outer radius
// and full height. offset places the shape in body space.
func NewChamferCylinder(radius, height float32, offset mgl32.Mat4) *ChamferCylinder {
	return newChamferCylinder(chamferCache, radius, height, offset)
}

func newChamferCylinder(cache *TopologyCache, radius, height float32, offset mgl32.Mat4) *ChamferCylinder {
	h := math32.Abs(height * 0.5)
	r := math32.Max(minChamferRadius, math32.Abs(radius)-h)

	topo := cache.Acquire()
	vertices := make([]mgl32.Vec3, len(topo.Template))
	for i, tv := range topo.Template {
		vertices[i] = tv.Scale(r, h)
	}

	return &ChamferCylinder{
		cache:  cache,
		hull:   newConvexHull(topo, vertices),
		radius: r,
		height: h,
		offset: offset,
		silhouette: [4]mgl32.Vec2{
			{h, r},
			{h, -r},
			{-h, -r},
			{-h, r},
		},
	}
}

// Release returns the shape's reference on the shared topology.
func (c *ChamferCylinder) Release() {
	c.cache.Release()
}

// Radius returns the radius of the core disk.
func (c *ChamferCylinder) Radius() float32 { return c.radius }

// HalfHeight returns half the axial extent, which is also the rounding radius.
func (c *ChamferCylinder) HalfHeight() float32 { return c.height }

// OuterRadius returns the radius the shape was requested with.
func (c *ChamferCylinder) OuterRadius() float32 { return c.radius + c.height }

// Height returns the full axial extent.
func (c *ChamferCylinder) Height() float32 { return 2 * c.height }

// Offset returns the shape-to-body transform.
func (c *ChamferCylinder) Offset() mgl32.Mat4 { return c.offset }

// Silhouette returns the corners of the (axial, radial) profile before
// rounding.
func (c *ChamferCylinder) Silhouette() [4]mgl32.Vec2 { return c.silhouette }

func (c *ChamferCylinder) UserID() uint32      { return c.userID }
func (c *ChamferCylinder) SetUserID(id uint32) { c.userID = id }

// SupportVertex returns the farthest boundary point along dir, which must
// be unit length.
func (c *ChamferCylinder) SupportVertex(dir mgl32.Vec3) mgl32.Vec3 {
	debugAssert(math32.Abs(dir.LenSqr()-1) < 1e-3, "support direction %v is not unit length", dir)

	if math32.Abs(dir[0]) > axialThreshold {
		x := c.height
		if dir[0] < 0 {
			x = -c.height
		}
		return mgl32.Vec3{x, 0, c.radius}
	}

	scale := c.radius / math32.Sqrt(dir[1]*dir[1]+dir[2]*dir[2]+1e-18)
	side := mgl32.Vec3{0, dir[1] * scale, dir[2] * scale}
	return side.Add(dir.Mul(c.height))
}

// SignedDistance returns the exact distance from p to the boundary,
// negative inside.
func (c *ChamferCylinder) SignedDistance(p mgl32.Vec3) float32 {
	rho := math32.Sqrt(p[1]*p[1] + p[2]*p[2])
	radial := math32.Max(rho-c.radius, 0)
	return math32.Sqrt(p[0]*p[0]+radial*radial) - c.height
}

// RayCast intersects the segment q0->q1, both in shape space. The flat caps
// are solved exactly; the rounded side goes through the polyhedral hull and
// the normal is then taken from the analytic surface.
func (c *ChamferCylinder) RayCast(q0, q1 mgl32.Vec3, contact *ContactPoint, preFilter RayPreFilter, body, userData any) float32 {
	if preFilter != nil && !preFilter(body, c, userData) {
		return RayMiss
	}

	h := c.height
	if q0[0] > h && q1[0] < h {
		if t, ok := c.capHit(q0, q1, h); ok {
			c.fillContact(contact, q0.Add(q1.Sub(q0).Mul(t)), mgl32.Vec3{1, 0, 0})
			return t
		}
	}
	if q0[0] < -h && q1[0] > -h {
		if t, ok := c.capHit(q0, q1, -h); ok {
			c.fillContact(contact, q0.Add(q1.Sub(q0).Mul(t)), mgl32.Vec3{-1, 0, 0})
			return t
		}
	}

	t, facet, ok := c.hull.rayCast(q0, q1)
	if !ok {
		return RayMiss
	}
	p := q0.Add(q1.Sub(q0).Mul(t))
	c.fillContact(contact, p, c.surfaceNormal(p, facet))
	return t
}

// capHit solves the crossing of the plane x = capX and accepts it when the
// crossing lies inside the cap disk.
func (c *ChamferCylinder) capHit(q0, q1 mgl32.Vec3, capX float32) (float32, bool) {
	t := (capX - q0[0]) / (q1[0] - q0[0])
	y := q0[1] + (q1[1]-q0[1])*t
	z := q0[2] + (q1[2]-q0[2])*t
	return t, y*y+z*z < c.radius*c.radius
}

// surfaceNormal is the direction from the closest point of the core disk
// to p. Points on the disk itself fall back to the facet normal.
func (c *ChamferCylinder) surfaceNormal(p, fallback mgl32.Vec3) mgl32.Vec3 {
	core := mgl32.Vec3{0, p[1], p[2]}
	if rho := math32.Sqrt(p[1]*p[1] + p[2]*p[2]); rho > c.radius {
		core = core.Mul(c.radius / rho)
	}
	n := p.Sub(core)
	l := n.Len()
	if l < 1e-6 {
		return fallback
	}
	return n.Mul(1 / l)
}

func (c *ChamferCylinder) fillContact(contact *ContactPoint, p, n mgl32.Vec3) {
	if contact == nil {
		return
	}
	contact.Point = p
	contact.Normal = n
	contact.UserID = c.userID
}

// Volume returns the enclosed volume: the core cylinder plus the half disk
// of radius h swept around the rim (Pappus).
func (c *ChamferCylinder) Volume() float32 {
	r, h := c.radius, c.height
	return 2*math32.Pi*r*r*h + math32.Pi*math32.Pi*r*h*h + 4.0/3.0*math32.Pi*h*h*h
}

// CalcAABB returns the world-space bounds of the shape placed by matrix.
// matrix must be rigid.
func (c *ChamferCylinder) CalcAABB(matrix mgl32.Mat4) (min, max mgl32.Vec3) {
	m := matrix.Mul4(c.offset)
	for i := 0; i < 3; i++ {
		// World axis i expressed in shape space is row i of the rotation.
		axis := mgl32.Vec3{m.At(i, 0), m.At(i, 1), m.At(i, 2)}.Normalize()
		hi := mgl32.TransformCoordinate(c.SupportVertex(axis), m)
		lo := mgl32.TransformCoordinate(c.SupportVertex(axis.Mul(-1)), m)
		max[i] = hi[i]
		min[i] = lo[i]
	}
	return min, max
}

// Info describes the shape for tools.
func (c *ChamferCylinder) Info() ShapeInfo {
	return ShapeInfo{
		Type:   ChamferCylinderShape,
		Radius: c.OuterRadius(),
		Height: c.Height(),
		Offset: c.offset,
		UserID: c.userID,
	}
}
