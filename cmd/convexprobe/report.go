package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/chazu/convex/internal/config"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tinylib/msgp/msgp"
)

var _ msgp.Marshaler = Report{}

// HasErrors reports whether the run produced eval or validation errors.
func (r Report) HasErrors() bool { return len(r.Errors) > 0 }

// MarshalMsg appends the MessagePack encoding of the report to b. Field
// names match the JSON encoding.
func (r Report) MarshalMsg(b []byte) ([]byte, error) {
	var err error
	b = msgp.AppendMapHeader(b, 6)
	b = msgp.AppendString(b, "runId")
	b = msgp.AppendString(b, r.RunID)

	b = msgp.AppendString(b, "bodies")
	b = msgp.AppendArrayHeader(b, uint32(len(r.Bodies)))
	for _, bd := range r.Bodies {
		b = bd.appendMsg(b)
	}

	b = msgp.AppendString(b, "probes")
	b = msgp.AppendArrayHeader(b, uint32(len(r.Probes)))
	for _, p := range r.Probes {
		if b, err = p.MarshalMsg(b); err != nil {
			return b, fmt.Errorf("probe %s on %s: %w", p.Kind, p.Body, err)
		}
	}

	b = msgp.AppendString(b, "meshes")
	b = msgp.AppendArrayHeader(b, uint32(len(r.Meshes)))
	for _, m := range r.Meshes {
		b = m.appendMsg(b)
	}

	b = msgp.AppendString(b, "errors")
	b = appendErrors(b, r.Errors)
	b = msgp.AppendString(b, "warnings")
	b = appendErrors(b, r.Warnings)
	return b, nil
}

func (bd BodyData) appendMsg(b []byte) []byte {
	b = msgp.AppendMapHeader(b, 8)
	b = msgp.AppendString(b, "path")
	b = msgp.AppendString(b, bd.Path)
	b = msgp.AppendString(b, "radius")
	b = msgp.AppendFloat64(b, bd.Radius)
	b = msgp.AppendString(b, "height")
	b = msgp.AppendFloat64(b, bd.Height)
	b = msgp.AppendString(b, "userId")
	b = msgp.AppendUint32(b, bd.UserID)
	b = msgp.AppendString(b, "world")
	b = appendFloats(b, bd.World[:])
	b = msgp.AppendString(b, "aabbMin")
	b = appendVec(b, bd.AABBMin)
	b = msgp.AppendString(b, "aabbMax")
	b = appendVec(b, bd.AABBMax)
	b = msgp.AppendString(b, "shape")
	return msgp.AppendBytes(b, bd.Shape)
}

func (m MeshData) appendMsg(b []byte) []byte {
	b = msgp.AppendMapHeader(b, 7)
	b = msgp.AppendString(b, "vertices")
	b = appendFloats(b, m.Vertices)
	b = msgp.AppendString(b, "normals")
	b = appendFloats(b, m.Normals)
	b = msgp.AppendString(b, "indices")
	b = appendUints(b, m.Indices)
	b = msgp.AppendString(b, "faceIds")
	b = appendUints(b, m.FaceIDs)
	b = msgp.AppendString(b, "partName")
	b = msgp.AppendString(b, m.PartName)
	b = msgp.AppendString(b, "kind")
	b = msgp.AppendString(b, m.Kind)
	b = msgp.AppendString(b, "color")
	return msgp.AppendString(b, m.Color)
}

func appendErrors(b []byte, errs []ErrorData) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(errs)))
	for _, e := range errs {
		b = msgp.AppendMapHeader(b, 3)
		b = msgp.AppendString(b, "line")
		b = msgp.AppendInt(b, e.Line)
		b = msgp.AppendString(b, "col")
		b = msgp.AppendInt(b, e.Col)
		b = msgp.AppendString(b, "message")
		b = msgp.AppendString(b, e.Message)
	}
	return b
}

func appendVec(b []byte, v mgl32.Vec3) []byte {
	return appendFloats(b, v[:])
}

func appendFloats(b []byte, fs []float32) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(fs)))
	for _, f := range fs {
		b = msgp.AppendFloat32(b, f)
	}
	return b
}

func appendUints(b []byte, us []uint32) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(us)))
	for _, u := range us {
		b = msgp.AppendUint32(b, u)
	}
	return b
}

// WriteReport encodes the report in the given format.
func WriteReport(w io.Writer, r Report, format string) error {
	switch format {
	case config.FormatMsgpack:
		b, err := r.MarshalMsg(nil)
		if err != nil {
			return fmt.Errorf("encode msgpack report: %w", err)
		}
		_, err = w.Write(b)
		return err
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode json report: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// meshFileName flattens a body path into a file name.
func meshFileName(m MeshData) string {
	return unsafeFileChars.ReplaceAllString(m.PartName, "_") + "." + m.Kind + ".json"
}

// WriteMeshes writes each mesh as its own JSON file under dir and returns
// the file paths in mesh order.
func WriteMeshes(dir string, meshes []MeshData) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create mesh dir: %w", err)
	}
	paths := make([]string, 0, len(meshes))
	for _, m := range meshes {
		path := filepath.Join(dir, meshFileName(m))
		data, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("encode mesh %s: %w", m.PartName, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write mesh %s: %w", m.PartName, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
