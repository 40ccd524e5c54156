package scene

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Body is one placement of a shape node reached from a root. A shape that is
// reachable along several paths yields one Body per path.
type Body struct {
	Node *Node
	Path string // labels from the root, joined with "/"

	// Transforms lists the placements above the shape, outermost first.
	Transforms []TransformData

	// World is the product of the transform matrices, outermost first.
	World mgl32.Mat4
}

// Shape returns the body's shape payload.
func (b Body) Shape() ChamferCylinderData {
	d, _ := b.Node.Data.(ChamferCylinderData)
	return d
}

// walker accumulates transforms during traversal. Nodes already on the
// current path are skipped so cyclic scenes still terminate.
type walker struct {
	s      *Scene
	onPath map[NodeID]bool
	labels []string
	chain  []TransformData
	world  []mgl32.Mat4
}

func newWalker(s *Scene) *walker {
	return &walker{
		s:      s,
		onPath: make(map[NodeID]bool),
		world:  []mgl32.Mat4{mgl32.Ident4()},
	}
}

func (w *walker) top() mgl32.Mat4 {
	return w.world[len(w.world)-1]
}

// visit calls fn for every node instance below n, with the world transform
// that applies to that node. fn returns false to stop the walk.
func (w *walker) visit(n *Node, fn func(n *Node, w *walker) bool) bool {
	if w.onPath[n.ID] {
		return true
	}
	w.onPath[n.ID] = true
	w.labels = append(w.labels, n.Label())
	defer func() {
		delete(w.onPath, n.ID)
		w.labels = w.labels[:len(w.labels)-1]
	}()

	if !fn(n, w) {
		return false
	}

	if td, ok := n.Data.(TransformData); ok && n.Kind == NodeTransform {
		w.chain = append(w.chain, td)
		w.world = append(w.world, w.top().Mul4(td.Matrix()))
		defer func() {
			w.chain = w.chain[:len(w.chain)-1]
			w.world = w.world[:len(w.world)-1]
		}()
	}

	for _, c := range w.s.Children(n) {
		if !w.visit(c, fn) {
			return false
		}
	}
	return true
}

func (w *walker) path() string {
	return strings.Join(w.labels, "/")
}

// Walk visits every node instance reachable from the roots in root order,
// passing the world transform that applies to it.
func (s *Scene) Walk(fn func(n *Node, world mgl32.Mat4) bool) {
	w := newWalker(s)
	for _, rid := range s.Roots {
		root := s.Get(rid)
		if root == nil {
			continue
		}
		if !w.visit(root, func(n *Node, w *walker) bool { return fn(n, w.top()) }) {
			return
		}
	}
}

// Bodies returns every shape placement reachable from the roots.
func (s *Scene) Bodies() []Body {
	var bodies []Body
	w := newWalker(s)
	for _, rid := range s.Roots {
		root := s.Get(rid)
		if root == nil {
			continue
		}
		w.visit(root, func(n *Node, w *walker) bool {
			if n.Kind == NodeShape {
				bodies = append(bodies, Body{
					Node:       n,
					Path:       w.path(),
					Transforms: append([]TransformData(nil), w.chain...),
					World:      w.top(),
				})
			}
			return true
		})
	}
	return bodies
}

// World returns the accumulated transform of the first instance of id
// reached from the roots. The second result is false when id is not
// reachable.
func (s *Scene) World(id NodeID) (mgl32.Mat4, bool) {
	world, found := mgl32.Ident4(), false
	s.Walk(func(n *Node, m mgl32.Mat4) bool {
		if n.ID == id {
			world, found = m, true
			return false
		}
		return true
	})
	return world, found
}
