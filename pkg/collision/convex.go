package collision

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// maxSectionPoints bounds the stack buffer used by planeSection.
const maxSectionPoints = 128

type facePlane struct {
	normal mgl32.Vec3 // outward
	dist   float32    // normal.Dot(p) for p on the face
	valid  bool
}

// convexHull is the polyhedral approximation of a shape: the shared
// topology with per-instance vertex positions and face planes.
type convexHull struct {
	topo     *Topology
	vertices []mgl32.Vec3
	planes   []facePlane
}

func newConvexHull(topo *Topology, vertices []mgl32.Vec3) convexHull {
	hull := convexHull{
		topo:     topo,
		vertices: vertices,
		planes:   make([]facePlane, len(topo.Faces)),
	}

	var centroid mgl32.Vec3
	for _, v := range vertices {
		centroid = centroid.Add(v)
	}
	centroid = centroid.Mul(1 / float32(len(vertices)))

	for f, start := range topo.Faces {
		// Newell normal, robust for the planar quads and the cap polygons.
		var n, c mgl32.Vec3
		count := 0
		e := start
		for {
			cur := vertices[topo.Edges[e].Vertex]
			nxt := vertices[topo.Edges[topo.Edges[e].Next].Vertex]
			n[0] += (cur[1] - nxt[1]) * (cur[2] + nxt[2])
			n[1] += (cur[2] - nxt[2]) * (cur[0] + nxt[0])
			n[2] += (cur[0] - nxt[0]) * (cur[1] + nxt[1])
			c = c.Add(cur)
			count++
			e = topo.Edges[e].Next
			if e == start {
				break
			}
		}
		l := n.Len()
		if l < 1e-12 {
			continue
		}
		n = n.Mul(1 / l)
		c = c.Mul(1 / float32(count))
		if n.Dot(c.Sub(centroid)) < 0 {
			n = n.Mul(-1)
		}
		hull.planes[f] = facePlane{normal: n, dist: n.Dot(c), valid: true}
	}
	return hull
}

// rayCast clips the segment q0->q1 against every face plane. A segment that
// starts inside the hull does not hit it.
func (hull *convexHull) rayCast(q0, q1 mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	d := q1.Sub(q0)
	tEnter, tExit := float32(0), float32(1)
	var normal mgl32.Vec3
	entered := false

	for i := range hull.planes {
		pl := &hull.planes[i]
		if !pl.valid {
			continue
		}
		num := pl.dist - pl.normal.Dot(q0)
		den := pl.normal.Dot(d)
		if math32.Abs(den) < 1e-12 {
			if num < 0 {
				return RayMiss, normal, false
			}
			continue
		}
		t := num / den
		if den < 0 {
			if t > tEnter {
				tEnter = t
				normal = pl.normal
				entered = true
			}
		} else if t < tExit {
			tExit = t
		}
		if tEnter > tExit {
			return RayMiss, normal, false
		}
	}
	if !entered {
		return RayMiss, normal, false
	}
	return tEnter, normal, true
}

// planeSection walks the loop of edges crossed by the plane and writes the
// crossing points to out. When the loop has more points than out can hold
// they are subsampled evenly.
func (hull *convexHull) planeSection(normal, origin mgl32.Vec3, out []mgl32.Vec3) int {
	if len(out) == 0 {
		return 0
	}
	edges := hull.topo.Edges
	side := func(v int32) float32 {
		return normal.Dot(hull.vertices[v].Sub(origin))
	}

	// An up edge runs from below the plane to on or above it.
	start := int32(-1)
	for i := range edges {
		if side(edges[i].Vertex) < 0 && side(edges[edges[i].Next].Vertex) >= 0 {
			start = int32(i)
			break
		}
	}
	if start < 0 {
		return 0
	}

	var pts [maxSectionPoints]mgl32.Vec3
	count := 0
	e := start
	for steps := 0; steps < len(edges); steps++ {
		a := hull.vertices[edges[e].Vertex]
		b := hull.vertices[edges[edges[e].Next].Vertex]
		da, db := side(edges[e].Vertex), side(edges[edges[e].Next].Vertex)
		p := a.Add(b.Sub(a).Mul(da / (da - db)))
		if count == 0 || p.Sub(pts[count-1]).LenSqr() > 1e-10 {
			if count < maxSectionPoints {
				pts[count] = p
				count++
			}
		}

		// Find the down edge of this face; its twin is the next up edge.
		next := edges[e].Next
		for next != e {
			if side(edges[next].Vertex) >= 0 && side(edges[edges[next].Next].Vertex) < 0 {
				break
			}
			next = edges[next].Next
		}
		debugAssert(next != e, "plane section lost the crossing at edge %d", e)
		e = edges[next].Twin
		if e == start {
			break
		}
	}
	if count > 1 && pts[0].Sub(pts[count-1]).LenSqr() <= 1e-10 {
		count--
	}

	if count <= len(out) {
		copy(out, pts[:count])
		return count
	}
	for k := range out {
		out[k] = pts[k*count/len(out)]
	}
	return len(out)
}
