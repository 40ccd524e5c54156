package tessellate_test

import (
	"math"
	"testing"

	"github.com/chazu/convex/pkg/collision"
	"github.com/chazu/convex/pkg/kernel"
	"github.com/chazu/convex/pkg/kernel/sdfx"
	"github.com/chazu/convex/pkg/scene"
	"github.com/chazu/convex/pkg/tessellate"
	"github.com/go-gl/mathgl/mgl32"
)

// Debug tessellation of one body: 12x24 quads split in two, plus two
// 24-gon caps fanned into 22 triangles each.
const (
	debugTriangles = 12*24*2 + 2*22
	debugVertices  = 12*24*4 + 2*24
)

// newKernel returns a coarse sdfx kernel for testing.
func newKernel() kernel.Kernel {
	return sdfx.NewWithCells(32)
}

// makeWheel creates a chamfer cylinder shape node.
func makeWheel(name string, radius, height float64) *scene.Node {
	return &scene.Node{
		ID:   scene.NewNodeID("body/" + name),
		Kind: scene.NodeShape,
		Name: name,
		Data: scene.ChamferCylinderData{Radius: radius, Height: height, UserID: 9},
	}
}

// makePlace creates a transform node.
func makePlace(name string, at, rot *scene.Vec3, children ...scene.NodeID) *scene.Node {
	return &scene.Node{
		ID:       scene.NewNodeID("place/" + name),
		Kind:     scene.NodeTransform,
		Name:     name,
		Children: children,
		Data:     scene.TransformData{Translation: at, Rotation: rot},
	}
}

// makeGroup creates a group node with children.
func makeGroup(name string, children ...scene.NodeID) *scene.Node {
	return &scene.Node{
		ID:       scene.NewNodeID("group/" + name),
		Kind:     scene.NodeGroup,
		Name:     name,
		Children: children,
		Data:     scene.GroupData{Description: name},
	}
}

// buildCart places one wheel plain and one rotated then moved.
func buildCart() *scene.Scene {
	s := scene.New()
	wheel := makeWheel("wheel", 2, 1)
	plain := makePlace("front", &scene.Vec3{X: -3}, nil, wheel.ID)
	spun := makePlace("spun", nil, &scene.Vec3{Z: 90}, wheel.ID)
	back := makePlace("back", &scene.Vec3{X: 4, Y: 1}, nil, spun.ID)
	cart := makeGroup("cart", plain.ID, back.ID)
	for _, n := range []*scene.Node{wheel, plain, spun, back, cart} {
		s.AddNode(n)
	}
	s.AddRoot(cart.ID)
	return s
}

// maxSurfaceError maps every mesh vertex back into shape space and returns
// the largest distance from the exact surface.
func maxSurfaceError(t *testing.T, m *kernel.Mesh, world mgl32.Mat4, shape *collision.ChamferCylinder) float64 {
	t.Helper()
	inv := world.Inv()
	worst := 0.0
	for i := 0; i < m.VertexCount(); i++ {
		p := mgl32.Vec3{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
		d := math.Abs(float64(shape.SignedDistance(mgl32.TransformCoordinate(p, inv))))
		worst = math.Max(worst, d)
	}
	return worst
}

func TestNilScene(t *testing.T) {
	meshes, err := tessellate.Debug(nil)
	if err != nil || meshes != nil {
		t.Errorf("Debug(nil) = %v, %v", meshes, err)
	}
	meshes, err = tessellate.Reference(nil, newKernel())
	if err != nil || meshes != nil {
		t.Errorf("Reference(nil) = %v, %v", meshes, err)
	}
	mesh, err := tessellate.ReferenceScene(scene.New(), newKernel())
	if err != nil || mesh != nil {
		t.Errorf("ReferenceScene(empty) = %v, %v", mesh, err)
	}
}

func TestDebug(t *testing.T) {
	s := buildCart()
	meshes, err := tessellate.Debug(s)
	if err != nil {
		t.Fatalf("Debug failed: %v", err)
	}
	bodies := s.Bodies()
	if len(meshes) != len(bodies) || len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}

	shape := collision.NewChamferCylinder(2, 1, mgl32.Ident4())
	defer shape.Release()

	for i, m := range meshes {
		t.Run(bodies[i].Path, func(t *testing.T) {
			if m.PartName != bodies[i].Path {
				t.Errorf("PartName = %q, want %q", m.PartName, bodies[i].Path)
			}
			if got := m.TriangleCount(); got != debugTriangles {
				t.Errorf("TriangleCount() = %d, want %d", got, debugTriangles)
			}
			if got := m.VertexCount(); got != debugVertices {
				t.Errorf("VertexCount() = %d, want %d", got, debugVertices)
			}
			if len(m.FaceIDs) != m.TriangleCount() {
				t.Errorf("len(FaceIDs) = %d, want %d", len(m.FaceIDs), m.TriangleCount())
			}
			if len(m.Normals) != len(m.Vertices) {
				t.Errorf("len(Normals) = %d, want %d", len(m.Normals), len(m.Vertices))
			}
			if worst := maxSurfaceError(t, m, bodies[i].World, shape); worst > 1e-4 {
				t.Errorf("debug vertex %g off the placed surface", worst)
			}
		})
	}
}

func TestDebugRejectsUnknownShapeData(t *testing.T) {
	s := scene.New()
	bad := &scene.Node{ID: scene.NewNodeID("bad"), Kind: scene.NodeShape, Name: "bad", Data: scene.GroupData{}}
	s.AddNode(bad)
	s.AddRoot(bad.ID)

	if _, err := tessellate.Debug(s); err == nil {
		t.Error("Debug accepted a shape without chamfer cylinder data")
	}
	if _, err := tessellate.Reference(s, newKernel()); err == nil {
		t.Error("Reference accepted a shape without chamfer cylinder data")
	}
}

func TestReference(t *testing.T) {
	s := buildCart()
	meshes, err := tessellate.Reference(s, newKernel())
	if err != nil {
		t.Fatalf("Reference failed: %v", err)
	}
	bodies := s.Bodies()
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}

	shape := collision.NewChamferCylinder(2, 1, mgl32.Ident4())
	defer shape.Release()

	for i, m := range meshes {
		t.Run(bodies[i].Path, func(t *testing.T) {
			if m.IsEmpty() {
				t.Fatal("mesh should not be empty")
			}
			if m.PartName != bodies[i].Path {
				t.Errorf("PartName = %q, want %q", m.PartName, bodies[i].Path)
			}
			// Kernel placements and scene matrices must agree.
			if worst := maxSurfaceError(t, m, bodies[i].World, shape); worst > 0.1 {
				t.Errorf("reference vertex %g off the placed surface", worst)
			}
		})
	}
}

func TestReferenceScene(t *testing.T) {
	s := buildCart()
	mesh, err := tessellate.ReferenceScene(s, newKernel())
	if err != nil {
		t.Fatalf("ReferenceScene failed: %v", err)
	}
	if mesh == nil || mesh.IsEmpty() {
		t.Fatal("merged mesh should not be empty")
	}
	if mesh.PartName != "scene" {
		t.Errorf("PartName = %q, want scene", mesh.PartName)
	}

	// Every vertex lies on one of the two placed wheels.
	shape := collision.NewChamferCylinder(2, 1, mgl32.Ident4())
	defer shape.Release()
	bodies := s.Bodies()
	invs := []mgl32.Mat4{bodies[0].World.Inv(), bodies[1].World.Inv()}
	for i := 0; i < mesh.VertexCount(); i++ {
		p := mgl32.Vec3{mesh.Vertices[3*i], mesh.Vertices[3*i+1], mesh.Vertices[3*i+2]}
		best := math.Inf(1)
		for _, inv := range invs {
			d := math.Abs(float64(shape.SignedDistance(mgl32.TransformCoordinate(p, inv))))
			best = math.Min(best, d)
		}
		if best > 0.15 {
			t.Fatalf("vertex %v is %g from both wheels", p, best)
		}
	}
}
