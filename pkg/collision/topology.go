package collision

import (
	"fmt"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Resolution of the shared chamfer cylinder topology: rings along the
// rounding arc, and vertices per ring.
const (
	chamferSlices = 10
	chamferBreaks = 32
)

// TemplateVertex is a unit sample of the chamfer cylinder surface. A shape
// with half-height h and core radius r places it at
//
//	(h*Axial, (r + h*Bulge)*Sin, (r + h*Bulge)*Cos)
type TemplateVertex struct {
	Axial float32
	Bulge float32
	Sin   float32
	Cos   float32
}

// Scale places the sample on a shape with core radius r and half-height h.
func (v TemplateVertex) Scale(r, h float32) mgl32.Vec3 {
	rho := r + h*v.Bulge
	return mgl32.Vec3{h * v.Axial, rho * v.Sin, rho * v.Cos}
}

// Topology is the immutable discretized surface shared by every chamfer
// cylinder.
type Topology struct {
	Slices   int
	Breaks   int
	Template []TemplateVertex
	Edges    []Edge
	Faces    []int32 // one edge per face
}

// VertexCount returns the number of template vertices.
func (t *Topology) VertexCount() int { return len(t.Template) }

// FaceVertices appends the vertex loop of face f to buf.
func (t *Topology) FaceVertices(f int, buf []int32) []int32 {
	start := t.Faces[f]
	e := start
	for {
		buf = append(buf, t.Edges[e].Vertex)
		e = t.Edges[e].Next
		if e == start {
			return buf
		}
	}
}

// buildChamferTopology samples slices+1 rings of breaks vertices along the
// rounding arc, stitches neighbouring rings with quads and closes both ends
// with one cap polygon each.
func buildChamferTopology(slices, breaks int) (*Topology, error) {
	if slices < 1 || breaks < 3 {
		return nil, fmt.Errorf("collision: invalid chamfer resolution %dx%d", slices, breaks)
	}

	sliceStep := math32.Pi / float32(slices)
	breakStep := 2 * math32.Pi / float32(breaks)

	template := make([]TemplateVertex, 0, (slices+1)*breaks)
	for j := 0; j <= slices; j++ {
		sa, ca := math32.Sincos(float32(j) * sliceStep)
		for i := 0; i < breaks; i++ {
			sb, cb := math32.Sincos(float32(i) * breakStep)
			template = append(template, TemplateVertex{Axial: -ca, Bulge: sa, Sin: sb, Cos: cb})
		}
	}

	b := int32(breaks)
	poly := newPolyhedron((4*slices + 2) * breaks)
	index := int32(0)
	for j := 0; j < slices; j++ {
		index0 := index + b - 1
		for i := 0; i < breaks; i++ {
			if err := poly.addFace(index, index0, index0+b, index+b); err != nil {
				return nil, err
			}
			index0 = index
			index++
		}
	}

	ring := make([]int32, breaks)
	for i := range ring {
		ring[i] = int32(i)
	}
	if err := poly.addFace(ring...); err != nil {
		return nil, err
	}
	last := int32(len(template)) - 1
	for i := range ring {
		ring[i] = last - int32(i)
	}
	if err := poly.addFace(ring...); err != nil {
		return nil, err
	}

	edges, faces, err := poly.build()
	if err != nil {
		return nil, err
	}
	return &Topology{
		Slices:   slices,
		Breaks:   breaks,
		Template: template,
		Edges:    edges,
		Faces:    faces,
	}, nil
}

// TopologyCache owns one lazily built Topology and counts the shapes using
// it. The topology is built when the count leaves zero and dropped when it
// returns to zero.
type TopologyCache struct {
	mu     sync.Mutex
	slices int
	breaks int
	topo   *Topology
	refs   int
	builds int
}

// NewTopologyCache returns an empty cache for the given resolution.
func NewTopologyCache(slices, breaks int) *TopologyCache {
	return &TopologyCache{slices: slices, breaks: breaks}
}

var chamferCache = NewTopologyCache(chamferSlices, chamferBreaks)

// ChamferTopology returns the process-wide cache shared by chamfer cylinders.
func ChamferTopology() *TopologyCache { return chamferCache }

// Acquire takes a reference, building the topology on first use.
func (c *TopologyCache) Acquire() *Topology {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refs == 0 {
		topo, err := buildChamferTopology(c.slices, c.breaks)
		invariant(err == nil, "building topology: %v", err)
		c.topo = topo
		c.builds++
		Logger().Debug("collision: built chamfer topology",
			"slices", c.slices, "breaks", c.breaks,
			"vertices", len(topo.Template), "edges", len(topo.Edges))
	}
	c.refs++
	return c.topo
}

// Release drops a reference. Releasing more often than acquiring panics and
// leaves the cache untouched.
func (c *TopologyCache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	invariant(c.refs > 0, "topology released with reference count %d", c.refs)
	c.refs--
	if c.refs == 0 {
		c.topo = nil
		Logger().Debug("collision: released chamfer topology")
	}
}

// Refs returns the current reference count.
func (c *TopologyCache) Refs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refs
}

// Builds returns how many times the topology has been built.
func (c *TopologyCache) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}
