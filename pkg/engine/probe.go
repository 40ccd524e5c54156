package engine

import (
	"github.com/chazu/convex/pkg/collision"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tinylib/msgp/msgp"
)

// ProbeKind names the shape query a probe ran.
type ProbeKind string

const (
	ProbeSupport   ProbeKind = "support"
	ProbeRayCast   ProbeKind = "raycast"
	ProbePlane     ProbeKind = "plane-contacts"
	ProbeSignature ProbeKind = "signature"
	ProbeVolume    ProbeKind = "volume"
	ProbeInfo      ProbeKind = "info"
)

// Probe records one shape query and its answer. Vectors are in the body's
// shape space.
type Probe struct {
	Kind    ProbeKind            `json:"kind"`
	Body    string               `json:"body"`
	Input   []mgl32.Vec3         `json:"input,omitempty"`   // direction, segment or plane
	Points  []mgl32.Vec3         `json:"points,omitempty"`  // support point, hit or contacts
	Normals []mgl32.Vec3         `json:"normals,omitempty"` // hit normal
	Value   float64              `json:"value"`             // fraction, volume, signature or count
	Info    *collision.ShapeInfo `json:"info,omitempty"`
}

var (
	_ msgp.Marshaler = Probe{}
	_ msgp.Sizer     = Probe{}
)

// MarshalMsg appends the MessagePack encoding of the probe to b.
func (p Probe) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 7)
	b = msgp.AppendString(b, "kind")
	b = msgp.AppendString(b, string(p.Kind))
	b = msgp.AppendString(b, "body")
	b = msgp.AppendString(b, p.Body)
	b = msgp.AppendString(b, "input")
	b = appendVecs(b, p.Input)
	b = msgp.AppendString(b, "points")
	b = appendVecs(b, p.Points)
	b = msgp.AppendString(b, "normals")
	b = appendVecs(b, p.Normals)
	b = msgp.AppendString(b, "value")
	b = msgp.AppendFloat64(b, p.Value)
	b = msgp.AppendString(b, "info")
	if p.Info == nil {
		return msgp.AppendNil(b), nil
	}
	return p.Info.MarshalMsg(b)
}

// Msgsize returns an upper bound on the encoded size.
func (p Probe) Msgsize() int {
	keys := len("kind") + len("body") + len("input") + len("points") + len("normals") + len("value") + len("info")
	n := msgp.MapHeaderSize + 7*msgp.StringPrefixSize + keys +
		msgp.StringPrefixSize + len(p.Kind) + msgp.StringPrefixSize + len(p.Body) +
		vecsSize(p.Input) + vecsSize(p.Points) + vecsSize(p.Normals) + msgp.Float64Size
	if p.Info == nil {
		return n + msgp.NilSize
	}
	return n + p.Info.Msgsize()
}

func appendVecs(b []byte, vs []mgl32.Vec3) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(vs)))
	for _, v := range vs {
		b = msgp.AppendArrayHeader(b, 3)
		b = msgp.AppendFloat32(b, v[0])
		b = msgp.AppendFloat32(b, v[1])
		b = msgp.AppendFloat32(b, v[2])
	}
	return b
}

func vecsSize(vs []mgl32.Vec3) int {
	return msgp.ArrayHeaderSize + len(vs)*(msgp.ArrayHeaderSize+3*msgp.Float32Size)
}
