package collision

import "fmt"

// Edge is a half-edge record. Next, Prev and Twin are indices into the
// same edge array, so a topology can be copied or relocated freely.
type Edge struct {
	Vertex int32 // origin vertex
	Next   int32
	Prev   int32
	Twin   int32
}

// polyhedron accumulates faces and links them into a closed half-edge mesh.
type polyhedron struct {
	edges    []Edge
	faces    []int32
	directed map[[2]int32]int32
}

func newPolyhedron(edgeHint int) *polyhedron {
	return &polyhedron{
		edges:    make([]Edge, 0, edgeHint),
		directed: make(map[[2]int32]int32, edgeHint),
	}
}

// addFace appends a polygon given by its vertex loop. Edge ids are assigned
// sequentially in insertion order.
func (p *polyhedron) addFace(verts ...int32) error {
	n := len(verts)
	if n < 3 {
		return fmt.Errorf("collision: face %d has %d vertices", len(p.faces), n)
	}
	for i := 0; i < n; i++ {
		a, b := verts[i], verts[(i+1)%n]
		if a == b {
			return fmt.Errorf("collision: face %d repeats vertex %d", len(p.faces), a)
		}
		if _, dup := p.directed[[2]int32{a, b}]; dup {
			return fmt.Errorf("collision: face %d reuses directed edge %d->%d", len(p.faces), a, b)
		}
	}

	base := int32(len(p.edges))
	for i := 0; i < n; i++ {
		a, b := verts[i], verts[(i+1)%n]
		id := base + int32(i)
		p.directed[[2]int32{a, b}] = id
		p.edges = append(p.edges, Edge{
			Vertex: a,
			Next:   base + int32((i+1)%n),
			Prev:   base + int32((i+n-1)%n),
			Twin:   -1,
		})
	}
	p.faces = append(p.faces, base)
	return nil
}

// build links twins and returns the flattened arrays. Every half-edge must
// have an opposite; an open boundary is an error.
func (p *polyhedron) build() ([]Edge, []int32, error) {
	for i := range p.edges {
		e := &p.edges[i]
		dst := p.edges[e.Next].Vertex
		twin, ok := p.directed[[2]int32{dst, e.Vertex}]
		if !ok {
			return nil, nil, fmt.Errorf("collision: edge %d (%d->%d) has no twin", i, e.Vertex, dst)
		}
		e.Twin = twin
	}
	return p.edges, p.faces, nil
}
