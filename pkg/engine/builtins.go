package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/convex/pkg/collision"
	"github.com/chazu/convex/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl32"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms probe script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: chamfer-cylinder -> chamfer_cylinder
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpShape wraps a scene.ChamferCylinderData so it can be returned from
// `chamfer-cylinder` and consumed by `body`.
type sexpShape struct {
	data scene.ChamferCylinderData
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(chamfer-cylinder :radius %g :height %g)", s.data.Radius, s.data.Height)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a scene.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   scene.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a scene.Vec3.
type sexpVec3 struct {
	vec scene.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

func vec3Sexp(v mgl32.Vec3) *sexpVec3 {
	return &sexpVec3{vec: scene.Vec3{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}}
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (scene.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return scene.ZeroID, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (scene.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return scene.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toDirection extracts a vec3 and normalizes it.
func toDirection(s zygo.Sexp) (mgl32.Vec3, error) {
	v, err := toVec3(s)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	d := v.Vec()
	if d.Len() < 1e-6 {
		return mgl32.Vec3{}, fmt.Errorf("direction must be non-zero")
	}
	return d.Normalize(), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the probe DSL builtins into a zygomys environment.
// Scene builtins populate the session's scene; query builtins run against
// the collision shape of a body and record a Probe.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, sess *session) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: scene.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (chamfer-cylinder :radius 2 :height 1 :user-id 7)
	// -----------------------------------------------------------------------
	env.AddFunction("chamfer_cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		data := scene.ChamferCylinderData{}

		v, ok := pa.kw["radius"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("chamfer-cylinder requires :radius")
		}
		r, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("chamfer-cylinder: radius: %w", err)
		}
		data.Radius = r

		v, ok = pa.kw["height"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("chamfer-cylinder requires :height")
		}
		h, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("chamfer-cylinder: height: %w", err)
		}
		data.Height = h

		if v, ok := pa.kw["user-id"]; ok {
			id, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("chamfer-cylinder: user-id: %w", err)
			}
			if id < 0 {
				return zygo.SexpNull, fmt.Errorf("chamfer-cylinder: user-id must not be negative")
			}
			data.UserID = uint32(id)
		}

		if data.Radius <= 0 || data.Height <= 0 {
			return zygo.SexpNull, fmt.Errorf("chamfer-cylinder: radius and height must be positive, got %g and %g",
				data.Radius, data.Height)
		}
		return &sexpShape{data: data}, nil
	})

	// -----------------------------------------------------------------------
	// (body "wheel" (chamfer-cylinder ...))
	// -----------------------------------------------------------------------
	env.AddFunction("body", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("body requires a name and a shape expression")
		}

		bodyName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("body: name: %w", err)
		}
		shape, ok := args[1].(*sexpShape)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("body: expected chamfer-cylinder expression, got %T", args[1])
		}
		if sess.scene.Lookup(bodyName) != nil {
			return zygo.SexpNull, fmt.Errorf("body: name %q already defined", bodyName)
		}

		id := scene.NewNodeID("body/" + bodyName)
		sess.add(&scene.Node{
			ID:   id,
			Kind: scene.NodeShape,
			Name: bodyName,
			Data: shape.data,
		})
		return &sexpNodeRef{id: id, name: bodyName}, nil
	})

	// -----------------------------------------------------------------------
	// (body-ref "wheel")
	// -----------------------------------------------------------------------
	env.AddFunction("body_ref", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("body-ref requires a name argument")
		}

		bodyName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("body-ref: name: %w", err)
		}
		n := sess.scene.Lookup(bodyName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("body-ref: no node named %q", bodyName)
		}
		return &sexpNodeRef{id: n.ID, name: bodyName}, nil
	})

	// -----------------------------------------------------------------------
	// (place (body-ref "wheel") :at (vec3 0 0 19) :rotate (vec3 0 0 90))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a node reference as first argument")
		}
		childID, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: target: %w", err)
		}

		td := scene.TransformData{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			td.Translation = &vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			td.Rotation = &vec
		}

		// Named targets get readable paths; every placement is distinct.
		idPath := "place/"
		if child := sess.scene.Get(childID); child != nil && child.Name != "" {
			idPath += child.Name + "/"
		}
		id := scene.NewNodeID(idPath + sess.nextSuffix())

		sess.add(&scene.Node{
			ID:       id,
			Kind:     scene.NodeTransform,
			Children: []scene.NodeID{childID},
			Data:     td,
		})
		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (group "name" (place ...) (body-ref ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("group requires a name argument")
		}

		groupName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("group: name: %w", err)
		}

		var children []scene.NodeID
		for i := 1; i < len(args); i++ {
			ref, ok := args[i].(*sexpNodeRef)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("group: child %d: expected node reference, got %T (%s)",
					i, args[i], args[i].SexpString(nil))
			}
			children = append(children, ref.id)
		}

		id := scene.NewNodeID("group/" + groupName)
		sess.add(&scene.Node{
			ID:       id,
			Kind:     scene.NodeGroup,
			Name:     groupName,
			Children: children,
			Data:     scene.GroupData{},
		})
		sess.scene.AddRoot(id)
		return &sexpNodeRef{id: id, name: groupName}, nil
	})

	// -----------------------------------------------------------------------
	// (support "wheel" (vec3 0 1 0)) -> vec3
	// -----------------------------------------------------------------------
	env.AddFunction("support", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("support requires a body and a direction")
		}
		n, shape, err := sess.body(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("support: %w", err)
		}
		dir, err := toDirection(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("support: direction: %w", err)
		}

		p := shape.SupportVertex(dir)
		sess.record(Probe{
			Kind:   ProbeSupport,
			Body:   n.Label(),
			Input:  []mgl32.Vec3{dir},
			Points: []mgl32.Vec3{p},
		})
		return vec3Sexp(p), nil
	})

	// -----------------------------------------------------------------------
	// (raycast "wheel" (vec3 3 0 0) (vec3 -3 0 0)) -> fraction, 1.2 on a miss
	// -----------------------------------------------------------------------
	env.AddFunction("raycast", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("raycast requires a body and two points")
		}
		n, shape, err := sess.body(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("raycast: %w", err)
		}
		p0, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("raycast: from: %w", err)
		}
		p1, err := toVec3(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("raycast: to: %w", err)
		}

		var contact collision.ContactPoint
		t := shape.RayCast(p0.Vec(), p1.Vec(), &contact, nil, nil, nil)
		probe := Probe{
			Kind:  ProbeRayCast,
			Body:  n.Label(),
			Input: []mgl32.Vec3{p0.Vec(), p1.Vec()},
			Value: float64(t),
		}
		if t <= 1 {
			probe.Points = []mgl32.Vec3{contact.Point}
			probe.Normals = []mgl32.Vec3{contact.Normal}
		}
		sess.record(probe)
		return &zygo.SexpFloat{Val: float64(t)}, nil
	})

	// -----------------------------------------------------------------------
	// (plane-contacts "wheel" :normal (vec3 0 1 0) :origin (vec3 0 1.9 0))
	//   -> list of up to two vec3
	// -----------------------------------------------------------------------
	env.AddFunction("plane_contacts", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("plane-contacts requires a body")
		}
		n, shape, err := sess.body(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane-contacts: %w", err)
		}

		v, ok := pa.kw["normal"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("plane-contacts requires :normal")
		}
		normal, err := toDirection(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane-contacts: normal: %w", err)
		}
		var origin scene.Vec3
		if v, ok := pa.kw["origin"]; ok {
			if origin, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("plane-contacts: origin: %w", err)
			}
		}

		var buf [2]mgl32.Vec3
		count := shape.CalculatePlaneIntersection(normal, origin.Vec(), buf[:])
		points := append([]mgl32.Vec3(nil), buf[:count]...)
		sess.record(Probe{
			Kind:   ProbePlane,
			Body:   n.Label(),
			Input:  []mgl32.Vec3{normal, origin.Vec()},
			Points: points,
			Value:  float64(count),
		})

		items := make([]zygo.Sexp, count)
		for i, p := range points {
			items[i] = vec3Sexp(p)
		}
		return zygo.MakeList(items), nil
	})

	// -----------------------------------------------------------------------
	// (signature "wheel") -> int
	// -----------------------------------------------------------------------
	env.AddFunction("signature", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("signature requires a body")
		}
		n, shape, err := sess.body(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("signature: %w", err)
		}
		sig := shape.CalculateSignature()
		sess.record(Probe{Kind: ProbeSignature, Body: n.Label(), Value: float64(sig)})
		return &zygo.SexpInt{Val: int64(sig)}, nil
	})

	// -----------------------------------------------------------------------
	// (volume "wheel") -> float
	// -----------------------------------------------------------------------
	env.AddFunction("volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("volume requires a body")
		}
		n, shape, err := sess.body(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("volume: %w", err)
		}
		vol := float64(shape.Volume())
		sess.record(Probe{Kind: ProbeVolume, Body: n.Label(), Value: vol})
		return &zygo.SexpFloat{Val: vol}, nil
	})

	// -----------------------------------------------------------------------
	// (info "wheel") -> string
	// -----------------------------------------------------------------------
	env.AddFunction("info", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("info requires a body")
		}
		n, shape, err := sess.body(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("info: %w", err)
		}
		info := shape.Info()
		sess.record(Probe{Kind: ProbeInfo, Body: n.Label(), Info: &info})
		return &zygo.SexpStr{S: fmt.Sprintf("%s radius=%g height=%g user-id=%d",
			info.Type, info.Radius, info.Height, info.UserID)}, nil
	})
}
