package mesh

import "github.com/go-gl/mathgl/mgl32"

// Faces with a cross product below this magnitude are treated as degenerate
// and contribute nothing.
const normalEpsilon = 1e-5

// DeriveNormals computes per-vertex normals from face geometry and stores
// them in m.Derived, replacing any previous result. Two explicit passes: face
// normals are accumulated into every vertex the face references, then each
// accumulator is normalized. An accumulator that sums to exactly zero is left
// as the zero vector.
//
// Only the first three vertices of a face contribute to its normal, even for
// larger polygons. Downstream shading depends on this approximation.
func (m *Mesh) DeriveNormals() {
	acc := make([]mgl32.Vec3, len(m.Vertices))

	for _, face := range m.Faces {
		if len(face) < 3 {
			continue
		}
		i0, i1, i2 := face[0].Vertex, face[1].Vertex, face[2].Vertex
		if !m.hasVertex(i0) || !m.hasVertex(i1) || !m.hasVertex(i2) {
			continue
		}

		v0 := m.Vertices[i0-1]
		n := m.Vertices[i1-1].Sub(v0).Cross(m.Vertices[i2-1].Sub(v0))
		length := n.Len()
		if length < normalEpsilon {
			continue
		}
		n = n.Mul(1 / length)

		for _, fv := range face {
			if m.hasVertex(fv.Vertex) {
				acc[fv.Vertex-1] = acc[fv.Vertex-1].Add(n)
			}
		}
	}

	for i := range acc {
		if length := acc[i].Len(); length > 0 {
			acc[i] = acc[i].Mul(1 / length)
		}
	}

	m.Derived = acc
}
