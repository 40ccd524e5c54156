package engine

import (
	"fmt"

	"github.com/chazu/convex/pkg/collision"
	"github.com/chazu/convex/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samber/lo"
)

// session is the state one evaluation builds: the scene, the probes run so
// far and the collision shapes backing them.
type session struct {
	scene  *scene.Scene
	order  []scene.NodeID // nodes in creation order
	probes []Probe
	shapes map[scene.NodeID]*collision.ChamferCylinder
	anon   int
}

func newSession() *session {
	return &session{
		scene:  scene.New(),
		shapes: make(map[scene.NodeID]*collision.ChamferCylinder),
	}
}

func (s *session) add(n *scene.Node) {
	if s.scene.Get(n.ID) == nil {
		s.order = append(s.order, n.ID)
	}
	s.scene.AddNode(n)
}

// nextSuffix numbers anonymous nodes in creation order so IDs are stable
// across evaluations of the same source.
func (s *session) nextSuffix() string {
	s.anon++
	return fmt.Sprintf("_anon_%d", s.anon)
}

func (s *session) record(p Probe) {
	s.probes = append(s.probes, p)
}

// body resolves a body name or node reference to its shape node and the
// collision shape built for it.
func (s *session) body(arg zygo.Sexp) (*scene.Node, *collision.ChamferCylinder, error) {
	var n *scene.Node
	switch v := arg.(type) {
	case *zygo.SexpStr:
		n = s.scene.Lookup(v.S)
		if n == nil {
			return nil, nil, fmt.Errorf("no body named %q", v.S)
		}
	case *sexpNodeRef:
		n = s.scene.Get(v.id)
		if n == nil {
			return nil, nil, fmt.Errorf("dangling node reference %s", v.id.Short())
		}
	default:
		return nil, nil, fmt.Errorf("expected body name or reference, got %T (%s)", arg, arg.SexpString(nil))
	}

	data, ok := n.Data.(scene.ChamferCylinderData)
	if !ok || n.Kind != scene.NodeShape {
		return nil, nil, fmt.Errorf("%q is a %s, not a body", n.Label(), n.Kind)
	}

	if c, ok := s.shapes[n.ID]; ok {
		return n, c, nil
	}
	c := collision.NewChamferCylinder(float32(data.Radius), float32(data.Height), mgl32.Ident4())
	c.SetUserID(data.UserID)
	s.shapes[n.ID] = c
	return n, c, nil
}

// rootOrphans makes every top-level node a root when the script declared
// no group.
func (s *session) rootOrphans() {
	if len(s.scene.Roots) > 0 {
		return
	}
	referenced := make(map[scene.NodeID]bool)
	for _, n := range s.scene.Nodes {
		for _, c := range n.Children {
			referenced[c] = true
		}
	}
	for _, id := range lo.Reject(s.order, func(id scene.NodeID, _ int) bool { return referenced[id] }) {
		s.scene.AddRoot(id)
	}
}

// release returns every shape's hold on the shared topology.
func (s *session) release() {
	for _, c := range s.shapes {
		c.Release()
	}
	clear(s.shapes)
}
