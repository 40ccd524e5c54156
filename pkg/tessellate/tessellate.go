// Package tessellate walks a scene and produces triangle meshes for its
// bodies. Debug meshes come from each collision shape's own debug
// tessellation; reference meshes come from a geometry kernel. One mesh is
// produced per body.
package tessellate

import (
	"fmt"

	"github.com/chazu/convex/pkg/collision"
	"github.com/chazu/convex/pkg/kernel"
	"github.com/chazu/convex/pkg/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samber/lo"
)

// Debug builds each body's collision shape and collects its debug
// tessellation in world space. The scene is never mutated.
func Debug(s *scene.Scene) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, b := range s.Bodies() {
		mesh, err := debugBody(b)
		if err != nil {
			return nil, fmt.Errorf("tessellate: debug mesh for %s: %w", b.Path, err)
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func debugBody(b scene.Body) (*kernel.Mesh, error) {
	data, ok := b.Node.Data.(scene.ChamferCylinderData)
	if !ok {
		return nil, fmt.Errorf("shape node %s has unsupported data type %T", b.Node.ID.Short(), b.Node.Data)
	}

	shape := collision.NewChamferCylinder(float32(data.Radius), float32(data.Height), mgl32.Ident4())
	defer shape.Release()
	shape.SetUserID(data.UserID)

	mesh := &kernel.Mesh{PartName: b.Path}
	shape.DebugCollision(b.World, mesh.AppendPolygon)
	return mesh, nil
}

// Reference asks the kernel for each body's solid and meshes it. Placements
// are applied innermost first, each as a rotation followed by a translation.
func Reference(s *scene.Scene, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, b := range s.Bodies() {
		solid, err := referenceSolid(k, b)
		if err != nil {
			return nil, fmt.Errorf("tessellate: reference solid for %s: %w", b.Path, err)
		}
		mesh, err := k.ToMesh(solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", b.Path, err)
		}
		mesh.PartName = b.Path
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// ReferenceScene unions every body into one solid and meshes it. It returns
// nil for a scene without bodies.
func ReferenceScene(s *scene.Scene, k kernel.Kernel) (*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}
	bodies := s.Bodies()
	if len(bodies) == 0 {
		return nil, nil
	}

	solids := make([]kernel.Solid, 0, len(bodies))
	for _, b := range bodies {
		solid, err := referenceSolid(k, b)
		if err != nil {
			return nil, fmt.Errorf("tessellate: reference solid for %s: %w", b.Path, err)
		}
		solids = append(solids, solid)
	}
	merged := lo.Reduce(solids[1:], func(acc kernel.Solid, s kernel.Solid, _ int) kernel.Solid {
		return k.Union(acc, s)
	}, solids[0])

	mesh, err := k.ToMesh(merged)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for scene: %w", err)
	}
	mesh.PartName = "scene"
	return mesh, nil
}

func referenceSolid(k kernel.Kernel, b scene.Body) (kernel.Solid, error) {
	data, ok := b.Node.Data.(scene.ChamferCylinderData)
	if !ok {
		return nil, fmt.Errorf("shape node %s has unsupported data type %T", b.Node.ID.Short(), b.Node.Data)
	}

	solid := k.ChamferCylinder(data.Radius, data.Height)
	for i := len(b.Transforms) - 1; i >= 0; i-- {
		td := b.Transforms[i]
		if td.Rotation != nil && !td.Rotation.IsZero() {
			r := *td.Rotation
			solid = k.Rotate(solid, r.X, r.Y, r.Z)
		}
		if td.Translation != nil && !td.Translation.IsZero() {
			t := *td.Translation
			solid = k.Translate(solid, t.X, t.Y, t.Z)
		}
	}
	return solid, nil
}
