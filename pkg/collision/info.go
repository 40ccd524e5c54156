package collision

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tinylib/msgp/msgp"
)

// ShapeInfo describes a shape for introspection and tooling.
type ShapeInfo struct {
	Type   ShapeID    `json:"type" msg:"type"`
	Radius float32    `json:"radius" msg:"radius"` // outer radius
	Height float32    `json:"height" msg:"height"` // full height
	Offset mgl32.Mat4 `json:"offset" msg:"offset"`
	UserID uint32     `json:"userId" msg:"user_id"`
}

var (
	_ msgp.Marshaler   = ShapeInfo{}
	_ msgp.Unmarshaler = (*ShapeInfo)(nil)
	_ msgp.Sizer       = ShapeInfo{}
)

// MarshalMsg appends the MessagePack encoding of the info to b.
func (s ShapeInfo) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 5)
	b = msgp.AppendString(b, "type")
	b = msgp.AppendUint32(b, uint32(s.Type))
	b = msgp.AppendString(b, "radius")
	b = msgp.AppendFloat32(b, s.Radius)
	b = msgp.AppendString(b, "height")
	b = msgp.AppendFloat32(b, s.Height)
	b = msgp.AppendString(b, "offset")
	b = msgp.AppendArrayHeader(b, uint32(len(s.Offset)))
	for _, v := range s.Offset {
		b = msgp.AppendFloat32(b, v)
	}
	b = msgp.AppendString(b, "user_id")
	b = msgp.AppendUint32(b, s.UserID)
	return b, nil
}

// UnmarshalMsg decodes a ShapeInfo from b and returns the remaining bytes.
// Unknown keys are skipped.
func (s *ShapeInfo) UnmarshalMsg(b []byte) ([]byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return b, fmt.Errorf("collision: shape info: %w", err)
	}
	for ; n > 0; n-- {
		var key []byte
		key, b, err = msgp.ReadMapKeyZC(b)
		if err != nil {
			return b, fmt.Errorf("collision: shape info key: %w", err)
		}
		switch string(key) {
		case "type":
			var v uint32
			v, b, err = msgp.ReadUint32Bytes(b)
			s.Type = ShapeID(v)
		case "radius":
			s.Radius, b, err = msgp.ReadFloat32Bytes(b)
		case "height":
			s.Height, b, err = msgp.ReadFloat32Bytes(b)
		case "offset":
			var sz uint32
			sz, b, err = msgp.ReadArrayHeaderBytes(b)
			if err == nil && sz != uint32(len(s.Offset)) {
				err = fmt.Errorf("offset has %d elements, want %d", sz, len(s.Offset))
			}
			for i := 0; err == nil && i < len(s.Offset); i++ {
				s.Offset[i], b, err = msgp.ReadFloat32Bytes(b)
			}
		case "user_id":
			s.UserID, b, err = msgp.ReadUint32Bytes(b)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return b, fmt.Errorf("collision: shape info %q: %w", key, err)
		}
	}
	return b, nil
}

// Msgsize returns an upper bound on the encoded size.
func (s ShapeInfo) Msgsize() int {
	keys := len("type") + len("radius") + len("height") + len("offset") + len("user_id")
	return msgp.MapHeaderSize + 5*msgp.StringPrefixSize + keys +
		2*msgp.Uint32Size + 2*msgp.Float32Size + msgp.ArrayHeaderSize + 16*msgp.Float32Size
}
