package kernel

// Mesh is a triangle mesh suitable for rendering or export.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`          // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`           // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`           // [i0,i1,i2, ...] triangles
	FaceIDs  []uint32  `json:"faceIds,omitempty"` // one attribute per triangle
	PartName string    `json:"partName"`          // which scene body this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// AppendPolygon adds a convex planar polygon given as vertexCount packed
// (x, y, z) triples, fan-triangulated from its first vertex. Every vertex
// gets the polygon's Newell normal and every triangle gets faceID.
// Polygons with fewer than three vertices are ignored.
func (m *Mesh) AppendPolygon(vertexCount int, face []float32, faceID uint32) {
	if vertexCount < 3 || len(face) < 3*vertexCount {
		return
	}

	var nx, ny, nz float32
	for i := 0; i < vertexCount; i++ {
		j := (i + 1) % vertexCount
		x0, y0, z0 := face[3*i], face[3*i+1], face[3*i+2]
		x1, y1, z1 := face[3*j], face[3*j+1], face[3*j+2]
		nx += (y0 - y1) * (z0 + z1)
		ny += (z0 - z1) * (x0 + x1)
		nz += (x0 - x1) * (y0 + y1)
	}
	if l := length(nx, ny, nz); l > 0 {
		nx, ny, nz = nx/l, ny/l, nz/l
	}

	base := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, face[:3*vertexCount]...)
	for i := 0; i < vertexCount; i++ {
		m.Normals = append(m.Normals, nx, ny, nz)
	}
	for i := 1; i+1 < vertexCount; i++ {
		m.Indices = append(m.Indices, base, base+uint32(i), base+uint32(i+1))
		m.FaceIDs = append(m.FaceIDs, faceID)
	}
}
