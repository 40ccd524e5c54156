package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/samber/lo"
)

// minCoreRadius mirrors the smallest core disk a chamfer cylinder keeps.
const minCoreRadius = 0.001

// ValidationSeverity indicates whether a validation finding blocks probing
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks probing
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if scene-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []ValidationError) bool {
	return lo.SomeBy(errs, func(e ValidationError) bool {
		return e.Severity == SeverityError
	})
}

// Validate runs the structural and dimensional checks on the scene and
// returns every finding. An empty slice means the scene is valid. It never
// mutates the scene.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(s)...)
	errs = append(errs, validateReferences(s)...)
	errs = append(errs, validateNames(s)...)
	errs = append(errs, validateRoots(s)...)
	errs = append(errs, validateShapes(s)...)
	errs = append(errs, validateTransforms(s)...)
	return errs
}

// validateDAG checks for cycles using DFS with 3-color marking.
func validateDAG(s *Scene) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // true when a cycle was found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		node, ok := s.Nodes[id]
		if !ok {
			// Dangling; reported by validateReferences.
			color[id] = black
			return false
		}
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range sortedIDs(s) {
		if color[id] == white && visit(id) {
			break
		}
	}
	return errs
}

// validateReferences checks that every child ID points at an existing node
// and that shapes are leaves.
func validateReferences(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range sortedIDs(s) {
		node := s.Nodes[id]
		for _, childID := range node.Children {
			if _, ok := s.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
		if node.Kind == NodeShape && len(node.Children) > 0 {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  "shape nodes cannot have children",
				Severity: SeverityError,
			})
		}
		if node.Kind == NodeTransform && len(node.Children) == 0 {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  "placement has nothing to place",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateNames checks that names are unique and that the name index only
// points at existing nodes.
func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError

	for name, id := range s.NameIndex {
		if _, ok := s.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	named := lo.Filter(lo.Values(s.Nodes), func(n *Node, _ int) bool { return n.Name != "" })
	byName := lo.GroupBy(named, func(n *Node) string { return n.Name })
	for _, name := range sortedKeys(byName) {
		if nodes := byName[name]; len(nodes) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(nodes)),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateRoots checks that every root exists and warns about nodes that
// no root reaches.
func validateRoots(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, rid := range s.Roots {
		if _, ok := s.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}
	if len(s.Nodes) == 0 {
		return errs
	}
	if len(s.Roots) == 0 {
		return append(errs, ValidationError{
			Message:  "scene has nodes but no roots",
			Severity: SeverityError,
		})
	}

	reachable := make(map[NodeID]bool)
	s.Walk(func(n *Node, _ mgl32.Mat4) bool {
		reachable[n.ID] = true
		return true
	})
	for _, id := range sortedIDs(s) {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root", s.Nodes[id].Label()),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateShapes checks chamfer cylinder dimensions.
func validateShapes(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, n := range s.Shapes() {
		d, ok := n.Data.(ChamferCylinderData)
		if !ok {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("shape has unsupported data type %T", n.Data),
				Severity: SeverityError,
			})
			continue
		}
		switch {
		case !isFinite(d.Radius) || !isFinite(d.Height):
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("dimensions must be finite, got radius %g height %g", d.Radius, d.Height),
				Severity: SeverityError,
			})
		case d.Radius <= 0:
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("radius must be positive, got %g", d.Radius),
				Severity: SeverityError,
			})
		case d.Height <= 0:
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("height must be positive, got %g", d.Height),
				Severity: SeverityError,
			})
		case d.Radius-d.Height/2 < minCoreRadius:
			errs = append(errs, ValidationError{
				NodeID: n.ID,
				Message: fmt.Sprintf("radius %g leaves no core disk for height %g; the core is clamped to %g",
					d.Radius, d.Height, minCoreRadius),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateTransforms checks that placements are finite.
func validateTransforms(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range sortedIDs(s) {
		n := s.Nodes[id]
		td, ok := n.Data.(TransformData)
		if !ok || n.Kind != NodeTransform {
			continue
		}
		if (td.Translation != nil && !td.Translation.finite()) || (td.Rotation != nil && !td.Rotation.finite()) {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  "placement must be finite",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

func sortedIDs(s *Scene) []NodeID {
	return sortedKeys(s.Nodes)
}
