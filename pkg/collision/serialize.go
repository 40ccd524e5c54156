package collision

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrCorruptStream reports a truncated or non-finite serialized shape.
	ErrCorruptStream = errors.New("collision: corrupt shape stream")

	// ErrUnknownShape reports a shape tag with no registered decoder.
	ErrUnknownShape = errors.New("collision: unknown shape type")
)

// shapeHeader precedes every serialized shape.
type shapeHeader struct {
	Type   ShapeID
	UserID uint32
	Offset mgl32.Mat4
}

func writeHeader(w io.Writer, hdr shapeHeader) error {
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("collision: writing %s header: %w", hdr.Type, err)
	}
	return nil
}

func readHeader(r io.Reader) (shapeHeader, error) {
	var hdr shapeHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return hdr, fmt.Errorf("%w: header: %v", ErrCorruptStream, err)
	}
	if !finite(hdr.Offset[:]...) {
		return hdr, fmt.Errorf("%w: non-finite offset", ErrCorruptStream)
	}
	return hdr, nil
}

func finite(vs ...float32) bool {
	for _, v := range vs {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// shapeDecoders reads a shape body after its header.
var shapeDecoders = map[ShapeID]func(shapeHeader, io.Reader) (Shape, error){
	ChamferCylinderShape: func(hdr shapeHeader, r io.Reader) (Shape, error) {
		return readChamferCylinder(hdr, r)
	},
}

// Deserialize reads any serialized shape.
func Deserialize(r io.Reader) (Shape, error) {
	hdr, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	decode, ok := shapeDecoders[hdr.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownShape, hdr.Type)
	}
	return decode(hdr, r)
}

// Serialize writes the shape header followed by {outer radius, full height}.
func (c *ChamferCylinder) Serialize(w io.Writer) error {
	hdr := shapeHeader{Type: ChamferCylinderShape, UserID: c.userID, Offset: c.offset}
	if err := writeHeader(w, hdr); err != nil {
		return err
	}
	size := [4]float32{c.OuterRadius(), c.Height(), 0, 0}
	if err := binary.Write(w, binary.LittleEndian, &size); err != nil {
		return fmt.Errorf("collision: writing chamfer cylinder size: %w", err)
	}
	return nil
}

// DeserializeChamferCylinder reads a shape written by Serialize.
func DeserializeChamferCylinder(r io.Reader) (*ChamferCylinder, error) {
	hdr, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if hdr.Type != ChamferCylinderShape {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrCorruptStream, hdr.Type, ChamferCylinderShape)
	}
	return readChamferCylinder(hdr, r)
}

func readChamferCylinder(hdr shapeHeader, r io.Reader) (*ChamferCylinder, error) {
	var size [4]float32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("%w: chamfer cylinder size: %v", ErrCorruptStream, err)
	}
	if !finite(size[:2]...) {
		Logger().Warn("collision: rejected chamfer cylinder", "radius", size[0], "height", size[1])
		return nil, fmt.Errorf("%w: non-finite chamfer cylinder size %v", ErrCorruptStream, size[:2])
	}
	c := NewChamferCylinder(size[0], size[1], hdr.Offset)
	c.userID = hdr.UserID
	return c, nil
}
