package mesh

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func writeMesh(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.obj")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write mesh file: %v", err)
	}
	return path
}

func TestLoadBasic(t *testing.T) {
	path := writeMesh(t, `
# a quad with explicit normals and texcoords
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(m.Vertices) != 4 {
		t.Errorf("expected 4 vertices, got %d", len(m.Vertices))
	}
	if len(m.Normals) != 1 {
		t.Errorf("expected 1 normal, got %d", len(m.Normals))
	}
	if len(m.TexCoords) != 4 {
		t.Errorf("expected 4 texcoords, got %d", len(m.TexCoords))
	}
	if len(m.Faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(m.Faces))
	}
	if len(m.Faces[0]) != 4 {
		t.Errorf("expected 4 face vertices, got %d", len(m.Faces[0]))
	}
	if m.Faces[0][2] != (FaceVertex{Vertex: 3, TexCoord: 3, Normal: 1}) {
		t.Errorf("unexpected face vertex %+v", m.Faces[0][2])
	}

	// Normals were supplied, so none are derived.
	if m.Derived != nil {
		t.Error("expected no derived normals when vn records exist")
	}
}

func TestLoadMissingSubFields(t *testing.T) {
	path := writeMesh(t, `
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1 2//1 3//
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	face := m.Faces[0]
	if face[0] != (FaceVertex{Vertex: 1}) {
		t.Errorf("bare index: got %+v", face[0])
	}
	if face[1] != (FaceVertex{Vertex: 2, Normal: 1}) {
		t.Errorf("v//n form: got %+v", face[1])
	}
	if face[2] != (FaceVertex{Vertex: 3}) {
		t.Errorf("trailing empty normal should parse as absent: got %+v", face[2])
	}
}

func TestLoadUnknownRecordsIgnored(t *testing.T) {
	path := writeMesh(t, `
o hand
g palm
s off
usemtl skin
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(m.Vertices) != 3 || len(m.Faces) != 1 {
		t.Errorf("expected 3 vertices / 1 face, got %d / %d",
			len(m.Vertices), len(m.Faces))
	}
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.obj"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadParseError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad vertex float", "v 0 zero 0\n"},
		{"bad normal float", "vn x 0 1\n"},
		{"bad texcoord float", "vt 0 y\n"},
		{"bad face index", "v 0 0 0\nf 1 2 three\n"},
		{"short vertex", "v 1 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeMesh(t, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected parse error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("expected *ParseError, got %T: %v", err, err)
			}
		})
	}
}

func TestLoadOutOfRangeIndexZeroed(t *testing.T) {
	path := writeMesh(t, `
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1/0/1 2/0/9 7/0/1
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	face := m.Faces[0]
	if face[1].Normal != 0 {
		t.Errorf("out-of-range normal index should be zeroed, got %d", face[1].Normal)
	}
	if face[2].Vertex != 0 {
		t.Errorf("out-of-range vertex index should be zeroed, got %d", face[2].Vertex)
	}
	if face[0].Vertex != 1 || face[0].Normal != 1 {
		t.Errorf("in-range indices must be preserved, got %+v", face[0])
	}
}

func TestDeriveNormalsSingleTriangle(t *testing.T) {
	path := writeMesh(t, `
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(m.Derived) != 3 {
		t.Fatalf("expected 3 derived normals, got %d", len(m.Derived))
	}
	want := mgl32.Vec3{0, 0, 1}
	for i, n := range m.Derived {
		if n != want {
			t.Errorf("derived[%d] = %v, want %v", i, n, want)
		}
	}
}

func TestDeriveNormalsIdempotent(t *testing.T) {
	path := writeMesh(t, `
v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
f 1 2 3
f 1 3 4
f 1 4 2
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	first := make([]mgl32.Vec3, len(m.Derived))
	copy(first, m.Derived)

	m.DeriveNormals()

	for i := range first {
		if m.Derived[i] != first[i] {
			t.Errorf("derived[%d] changed on recompute: %v vs %v",
				i, m.Derived[i], first[i])
		}
	}
}

func TestDeriveNormalsDegenerateFace(t *testing.T) {
	// All three vertices collinear: zero-length cross product.
	path := writeMesh(t, `
v 0 0 0
v 1 0 0
v 2 0 0
f 1 2 3
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	zero := mgl32.Vec3{}
	for i, n := range m.Derived {
		if n != zero {
			t.Errorf("derived[%d] = %v, want zero vector for degenerate face", i, n)
		}
	}
}

func TestDeriveNormalsAccumulatesAcrossFaces(t *testing.T) {
	// Vertex 1 is shared by two faces with opposite orientation around X/Y;
	// the accumulated normal must be the normalized sum, not the last face.
	path := writeMesh(t, `
v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 -1
f 1 2 3
f 1 2 4
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Face 1 normal (0,0,1); face 2 normal (0,1,0). Shared vertices sum to
	// (0,1,1) normalized.
	want := mgl32.Vec3{0, 1, 1}.Normalize()
	got := m.Derived[0]
	if got.Sub(want).Len() > 1e-6 {
		t.Errorf("derived[0] = %v, want %v", got, want)
	}
}

func TestDeriveNormalsQuadUsesFirstThreeVertices(t *testing.T) {
	// A non-planar quad: the face normal comes from vertices 1,2,3 only, but
	// is accumulated into all four referenced vertices.
	path := writeMesh(t, `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 5
f 1 2 3 4
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := mgl32.Vec3{0, 0, 1}
	for i := 0; i < 4; i++ {
		if m.Derived[i] != want {
			t.Errorf("derived[%d] = %v, want %v", i, m.Derived[i], want)
		}
	}
}
