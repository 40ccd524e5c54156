package collision

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// maxPlaneContacts is the most points a plane section reports.
	maxPlaneContacts = 2

	// planeAxialThreshold: normals closer to the axis than this have no
	// usable radial direction and go through the hull section instead.
	planeAxialThreshold = 0.999
)

// sectionPoints collects profile crossings, skipping repeats.
type sectionPoints struct {
	pts   [maxPlaneContacts]mgl32.Vec2
	count int
	limit int
}

func (s *sectionPoints) full() bool { return s.count >= s.limit }

func (s *sectionPoints) add(p mgl32.Vec2, ok bool) {
	if !ok || s.full() {
		return
	}
	if s.count > 0 && p.Sub(s.pts[s.count-1]).LenSqr() < 1e-12 {
		return
	}
	s.pts[s.count] = p
	s.count++
}

// CalculatePlaneIntersection writes at most two points where the plane
// through origin with unit normal meets the shape, and returns the count.
//
// The shape is symmetric about its axis, so the plane is rotated about X
// until its normal lies in the (axial, radial) half plane and the problem
// reduces to cutting the 2D profile: a rectangle whose radial sides are
// replaced by half circles of radius HalfHeight.
func (c *ChamferCylinder) CalculatePlaneIntersection(normal, origin mgl32.Vec3, contacts []mgl32.Vec3) int {
	if len(contacts) > maxPlaneContacts {
		contacts = contacts[:maxPlaneContacts]
	}
	if len(contacts) == 0 {
		return 0
	}
	debugAssert(math32.Abs(normal.LenSqr()-1) < 1e-3, "plane normal %v is not unit length", normal)

	if math32.Abs(normal[0]) >= planeAxialThreshold {
		return c.hull.planeSection(normal, origin, contacts)
	}

	m := math32.Sqrt(normal[1]*normal[1] + normal[2]*normal[2])
	cosAng, sinAng := normal[1]/m, normal[2]/m
	n := mgl32.Vec2{normal[0], m}
	w := -(normal[0]*origin[0] + m*(origin[1]*cosAng+origin[2]*sinAng))

	hits := sectionPoints{limit: len(contacts)}
	c.profileSection(n, w, &hits)

	for i := 0; i < hits.count; i++ {
		p := hits.pts[i]
		contacts[i] = mgl32.Vec3{p[0], p[1] * cosAng, p[1] * sinAng}
	}
	return hits.count
}

// profileSection cuts the profile with the line n.p + w = 0.
func (c *ChamferCylinder) profileSection(n mgl32.Vec2, w float32, hits *sectionPoints) {
	h, r := c.height, c.radius
	s := &c.silhouette
	eval := func(p mgl32.Vec2) float32 { return n.Dot(p) + w }

	maxDir := s[0]
	if n[0] <= 0 {
		maxDir[0] = -maxDir[0]
	}
	if n[1] <= 0 {
		maxDir[1] = -maxDir[1]
	}

	if eval(maxDir)*eval(maxDir.Mul(-1)) > 0 {
		// The line misses the rectangle, so it can only cut one rounding.
		// Report the point of the chord closest to the arc centre: the chord
		// midpoint, which sits inside the surface by as much as the plane
		// cuts into the rounding.
		if d := w + n[1]*r; math32.Abs(d) < h {
			hits.add(mgl32.Vec2{0, r}.Sub(n.Mul(d)), true)
		} else if d := w - n[1]*r; math32.Abs(d) < h {
			hits.add(mgl32.Vec2{0, -r}.Sub(n.Mul(d)), true)
		}
		return
	}

	hits.add(segmentCrossing(s[0], s[1], n, w))
	if !hits.full() {
		hits.add(arcCrossing(-r, h, n, w))
	}
	if !hits.full() {
		hits.add(segmentCrossing(s[2], s[3], n, w))
	}
	if !hits.full() {
		hits.add(arcCrossing(r, h, n, w))
	}
}

// segmentCrossing intersects the line with the segment a->b.
func segmentCrossing(a, b, n mgl32.Vec2, w float32) (mgl32.Vec2, bool) {
	dp := b.Sub(a)
	den := n.Dot(dp)
	if math32.Abs(den) < 1e-12 {
		return mgl32.Vec2{}, false
	}
	t := -(n.Dot(a) + w) / den
	if t < 0 || t > 1 {
		return mgl32.Vec2{}, false
	}
	return a.Add(dp.Mul(t)), true
}

// arcCrossing intersects the line with the rounding circle of radius h
// centred on (0, rc) and keeps the root on the outer half, the side of the
// centre facing away from the axis.
//
// With y measured from the centre, x = -(n.y*y + d)/n.x where d = w + rc*n.y,
// and substituting into x^2 + y^2 = h^2 gives a*y^2 + b*y + c = 0.
func arcCrossing(rc, h float32, n mgl32.Vec2, w float32) (mgl32.Vec2, bool) {
	d := w + rc*n[1]
	if math32.Abs(d) >= h || math32.Abs(n[0]) < 1e-6 {
		return mgl32.Vec2{}, false
	}

	a := n[0]*n[0] + n[1]*n[1]
	b := 2 * n[1] * d
	c := d*d - h*h*n[0]*n[0]
	desc := b*b - 4*a*c
	if desc <= 0 {
		return mgl32.Vec2{}, false
	}
	desc = math32.Sqrt(desc)
	y0 := (-b + desc) / (2 * a)
	y1 := (-b - desc) / (2 * a)

	y := y0
	if rc < 0 {
		if y > 0 {
			y = y1
		}
		if y >= 0 {
			return mgl32.Vec2{}, false
		}
	} else if y <= 0 {
		return mgl32.Vec2{}, false
	}

	x := -(n[1]*y + d) / n[0]
	return mgl32.Vec2{x, y + rc}, true
}
