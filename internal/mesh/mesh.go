// Package mesh loads OBJ-style geometry descriptions into an indexed
// in-memory form ready for GPU expansion.
package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// FaceVertex references one vertex of a face. Indices are 1-based into the
// mesh arrays; 0 means the component is absent.
type FaceVertex struct {
	Vertex   int
	TexCoord int
	Normal   int
}

// Face is an ordered sequence of vertex references, normally three or more.
type Face []FaceVertex

// Mesh holds parsed geometry. Derived is populated by DeriveNormals when the
// file supplies no vn records; it is indexed by vertex, not by normal index.
type Mesh struct {
	Vertices  []mgl32.Vec3
	Normals   []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Faces     []Face

	Derived []mgl32.Vec3
}

// ParseError reports a malformed record in a mesh file.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// hasVertex reports whether a 1-based vertex index resolves in the mesh.
func (m *Mesh) hasVertex(idx int) bool {
	return idx > 0 && idx <= len(m.Vertices)
}
