package scene

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeID is a content-addressed node identifier: the hex encoding of the
// first 16 bytes of the SHA-256 of the node's path.
type NodeID string

// ZeroID is the empty identifier.
const ZeroID NodeID = ""

// NewNodeID derives a stable identifier from a path such as "body/wheel".
func NewNodeID(path string) NodeID {
	sum := sha256.Sum256([]byte(path))
	return NodeID(hex.EncodeToString(sum[:16]))
}

// IsZero reports whether the identifier is unset.
func (id NodeID) IsZero() bool { return id == ZeroID }

// Short returns the first 8 hex digits, for messages.
func (id NodeID) Short() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}
