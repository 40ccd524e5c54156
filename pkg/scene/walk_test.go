package scene

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestBodies(t *testing.T) {
	s := buildRig()
	bodies := s.Bodies()
	if len(bodies) != 2 {
		t.Fatalf("len(Bodies()) = %d, want 2", len(bodies))
	}

	tests := []struct {
		name       string
		body       Body
		transforms int
		origin     mgl32.Vec3
		xAxis      mgl32.Vec3
	}{
		{"translated", bodies[0], 1, mgl32.Vec3{10, 0, 0}, mgl32.Vec3{11, 0, 0}},
		// Rz(90) * T(0,5,0): the offset turns with the rotation.
		{"rotated", bodies[1], 2, mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{-5, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.body
			if b.Node.Name != "wheel" {
				t.Errorf("Node.Name = %q, want wheel", b.Node.Name)
			}
			if !strings.HasPrefix(b.Path, "rig/") || !strings.HasSuffix(b.Path, "/wheel") {
				t.Errorf("Path = %q", b.Path)
			}
			if len(b.Transforms) != tt.transforms {
				t.Errorf("len(Transforms) = %d, want %d", len(b.Transforms), tt.transforms)
			}
			if got := mgl32.TransformCoordinate(mgl32.Vec3{}, b.World); !vecClose(got, tt.origin) {
				t.Errorf("origin -> %v, want %v", got, tt.origin)
			}
			if got := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, b.World); !vecClose(got, tt.xAxis) {
				t.Errorf("x axis -> %v, want %v", got, tt.xAxis)
			}
			if d := b.Shape(); d.Radius != 2 || d.Height != 1 {
				t.Errorf("Shape() = %+v", d)
			}
		})
	}
}

func TestWorld(t *testing.T) {
	s := buildRig()

	m, ok := s.World(s.Lookup("wheel").ID)
	if !ok {
		t.Fatal("World(wheel) not found")
	}
	if got := mgl32.TransformCoordinate(mgl32.Vec3{}, m); !vecClose(got, mgl32.Vec3{10, 0, 0}) {
		t.Errorf("World(wheel) origin = %v, want first placement", got)
	}

	m, ok = s.World(s.Roots[0])
	if !ok || m != mgl32.Ident4() {
		t.Errorf("World(root) = %v, %v; want identity", m, ok)
	}

	if _, ok := s.World(NewNodeID("nowhere")); ok {
		t.Error("World of an unknown node reported found")
	}
}

func TestWalkStops(t *testing.T) {
	s := buildRig()
	visited := 0
	s.Walk(func(n *Node, _ mgl32.Mat4) bool {
		visited++
		return n.Kind != NodeTransform
	})
	// rig, then the first placement stops the walk.
	if visited != 2 {
		t.Errorf("visited %d nodes, want 2", visited)
	}
}

func TestWalkTerminatesOnCycle(t *testing.T) {
	s := New()
	a := NewNodeID("a")
	b := NewNodeID("b")
	s.AddNode(&Node{ID: a, Kind: NodeGroup, Name: "a", Children: []NodeID{b}, Data: GroupData{}})
	s.AddNode(&Node{ID: b, Kind: NodeGroup, Name: "b", Children: []NodeID{a}, Data: GroupData{}})
	s.AddRoot(a)

	visited := 0
	s.Walk(func(*Node, mgl32.Mat4) bool {
		visited++
		return true
	})
	if visited != 2 {
		t.Errorf("visited %d nodes, want 2", visited)
	}
}
