package collision

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/chewxy/math32"
)

// signatureWords is the size of the buffer hashed by CalculateSignature.
const signatureWords = 32

// Quantize maps a length to the fixed-point value used in signatures.
// Lengths closer than 1/1024 share a value.
func Quantize(v float32) uint32 {
	return uint32(v * 1024)
}

// makeCRC hashes the little-endian encoding of words.
func makeCRC(words *[signatureWords]uint32) uint32 {
	var raw [signatureWords * 4]byte
	for i, w := range words {
		binary.LittleEndian.PutUint32(raw[4*i:], w)
	}
	return crc32.ChecksumIEEE(raw[:])
}

// CalculateSignature returns a hash of the shape family, its quantized
// dimensions and the exact offset transform. Equal shapes have equal
// signatures, so the value can key a shape cache.
func (c *ChamferCylinder) CalculateSignature() uint32 {
	var buf [signatureWords]uint32
	buf[0] = uint32(ChamferCylinderShape)
	buf[1] = Quantize(c.radius)
	buf[2] = Quantize(c.height)
	for i, v := range c.offset {
		buf[3+i] = math32.Float32bits(v)
	}
	return makeCRC(&buf)
}
