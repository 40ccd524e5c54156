package scene

import (
	"fmt"

	"github.com/samber/lo"
)

// Scene is the top-level structure produced by probe evaluation.
type Scene struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Version   uint64            `json:"version"`
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
	}
}

// AddNode adds a node to the scene. It does not check for duplicates.
func (s *Scene) AddNode(n *Node) {
	s.Nodes[n.ID] = n
	if n.Name != "" {
		s.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root. Repeated roots are ignored.
func (s *Scene) AddRoot(id NodeID) {
	if !lo.Contains(s.Roots, id) {
		s.Roots = append(s.Roots, id)
	}
}

// Lookup returns the node with the given name, or nil.
func (s *Scene) Lookup(name string) *Node {
	id, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (s *Scene) MustLookup(name string) *Node {
	n := s.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("scene: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (s *Scene) Get(id NodeID) *Node {
	return s.Nodes[id]
}

// Shapes returns all shape nodes ordered by ID.
func (s *Scene) Shapes() []*Node {
	ids := lo.Filter(sortedKeys(s.Nodes), func(id NodeID, _ int) bool {
		return s.Nodes[id].Kind == NodeShape
	})
	return lo.Map(ids, func(id NodeID, _ int) *Node { return s.Nodes[id] })
}

// Children returns the child nodes of n, skipping dangling references.
func (s *Scene) Children(n *Node) []*Node {
	return lo.FilterMap(n.Children, func(id NodeID, _ int) (*Node, bool) {
		c, ok := s.Nodes[id]
		return c, ok
	})
}

// NodeCount returns the total number of nodes.
func (s *Scene) NodeCount() int {
	return len(s.Nodes)
}
