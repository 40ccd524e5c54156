package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// buildRig creates a group with one wheel placed twice: once translated and
// once through a rotation stacked on a translation.
func buildRig() *Scene {
	s := New()

	wheelID := NewNodeID("body/wheel")
	placeA := NewNodeID("place/wheel/a")
	placeB := NewNodeID("place/wheel/b")
	spin := NewNodeID("place/wheel/spin")
	rigID := NewNodeID("group/rig")

	s.AddNode(&Node{
		ID: wheelID, Kind: NodeShape, Name: "wheel",
		Data: ChamferCylinderData{Radius: 2, Height: 1},
	})
	s.AddNode(&Node{
		ID: placeA, Kind: NodeTransform, Children: []NodeID{wheelID},
		Data: TransformData{Translation: &Vec3{X: 10}},
	})
	s.AddNode(&Node{
		ID: placeB, Kind: NodeTransform, Children: []NodeID{wheelID},
		Data: TransformData{Translation: &Vec3{Y: 5}},
	})
	s.AddNode(&Node{
		ID: spin, Kind: NodeTransform, Children: []NodeID{placeB},
		Data: TransformData{Rotation: &Vec3{Z: 90}},
	})
	s.AddNode(&Node{
		ID: rigID, Kind: NodeGroup, Name: "rig",
		Children: []NodeID{placeA, spin},
		Data:     GroupData{Description: "two wheels"},
	})
	s.AddRoot(rigID)
	return s
}

// vecClose compares absolutely; rotations leave residue near 1e-7 on
// components that should be exactly zero.
func vecClose(a, b mgl32.Vec3) bool {
	return a.Sub(b).Len() < 1e-5
}

// ---------------------------------------------------------------------------
// IDs and lookup
// ---------------------------------------------------------------------------

func TestNewNodeID(t *testing.T) {
	a := NewNodeID("body/wheel")
	if len(a) != 32 {
		t.Fatalf("len(NewNodeID) = %d, want 32", len(a))
	}
	if a != NewNodeID("body/wheel") {
		t.Error("NewNodeID is not deterministic")
	}
	if a == NewNodeID("body/wheel2") {
		t.Error("different paths produced the same ID")
	}
	if got := a.Short(); got != string(a[:8]) {
		t.Errorf("Short() = %q, want %q", got, a[:8])
	}
	if a.IsZero() || !ZeroID.IsZero() {
		t.Error("IsZero mismatch")
	}
}

func TestNodeKindString(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{NodeShape, "shape"},
		{NodeTransform, "transform"},
		{NodeGroup, "group"},
		{NodeKind(42), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSceneLookup(t *testing.T) {
	s := buildRig()

	if n := s.Lookup("wheel"); n == nil || n.Kind != NodeShape {
		t.Fatalf("Lookup(wheel) = %v", n)
	}
	if n := s.Lookup("missing"); n != nil {
		t.Errorf("Lookup(missing) = %v, want nil", n)
	}
	if got := s.NodeCount(); got != 5 {
		t.Errorf("NodeCount() = %d, want 5", got)
	}
	if got := len(s.Shapes()); got != 1 {
		t.Errorf("len(Shapes()) = %d, want 1", got)
	}
	rig := s.MustLookup("rig")
	if got := len(s.Children(rig)); got != 2 {
		t.Errorf("len(Children(rig)) = %d, want 2", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustLookup(missing) did not panic")
		}
	}()
	s.MustLookup("missing")
}

func TestAddRootIgnoresRepeats(t *testing.T) {
	s := buildRig()
	s.AddRoot(s.Roots[0])
	if len(s.Roots) != 1 {
		t.Errorf("len(Roots) = %d, want 1", len(s.Roots))
	}
}

func TestNodeLabel(t *testing.T) {
	named := &Node{ID: NewNodeID("a"), Name: "a"}
	anon := &Node{ID: NewNodeID("b")}
	if named.Label() != "a" {
		t.Errorf("Label() = %q, want a", named.Label())
	}
	if anon.Label() != anon.ID.Short() {
		t.Errorf("Label() = %q, want %q", anon.Label(), anon.ID.Short())
	}
}

// ---------------------------------------------------------------------------
// Transforms
// ---------------------------------------------------------------------------

func TestTransformMatrix(t *testing.T) {
	tests := []struct {
		name string
		td   TransformData
		in   mgl32.Vec3
		want mgl32.Vec3
	}{
		{"identity", TransformData{}, mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 2, 3}},
		{"translate", TransformData{Translation: &Vec3{1, 2, 3}}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{2, 2, 3}},
		{"rotate z", TransformData{Rotation: &Vec3{Z: 90}}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{"rotate x", TransformData{Rotation: &Vec3{X: 90}}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
		{
			"rotate then translate",
			TransformData{Translation: &Vec3{1, 2, 3}, Rotation: &Vec3{Z: 90}},
			mgl32.Vec3{1, 0, 0},
			mgl32.Vec3{1, 3, 3},
		},
		{
			// X first, then Z: +Y goes to +Z and stays there.
			"euler order",
			TransformData{Rotation: &Vec3{X: 90, Z: 90}},
			mgl32.Vec3{0, 1, 0},
			mgl32.Vec3{0, 0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mgl32.TransformCoordinate(tt.in, tt.td.Matrix())
			if !vecClose(got, tt.want) {
				t.Errorf("Matrix() maps %v to %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestVecCloseIsAbsolute(t *testing.T) {
	// Residue left by a 90 degree rotation on a zero component.
	if !vecClose(mgl32.Vec3{-4.371139e-08, 1, 0}, mgl32.Vec3{0, 1, 0}) {
		t.Error("rotation residue rejected")
	}
	if !vecClose(mgl32.Vec3{-5, -2.1855695e-07, 0}, mgl32.Vec3{-5, 0, 0}) {
		t.Error("rotation residue rejected")
	}
	if vecClose(mgl32.Vec3{0, 1, 1e-3}, mgl32.Vec3{0, 1, 0}) {
		t.Error("real difference accepted")
	}
}

func TestVec3(t *testing.T) {
	v := Vec3{1, 2, 3}.Add(Vec3{1, 1, 1})
	if v != (Vec3{2, 3, 4}) {
		t.Errorf("Add = %v", v)
	}
	if v.IsZero() || !(Vec3{}).IsZero() {
		t.Error("IsZero mismatch")
	}
	if v.Vec() != (mgl32.Vec3{2, 3, 4}) {
		t.Errorf("Vec() = %v", v.Vec())
	}
}
