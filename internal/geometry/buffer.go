// Package geometry expands face-indexed mesh data into flat GPU vertex
// streams and owns their lifecycle.
package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/quaywood/handviewer/internal/engine/surface"
	"github.com/quaywood/handviewer/internal/logger"
	"github.com/quaywood/handviewer/internal/mesh"
)

// Device is the buffer-mode subset of the drawing surface the expansion
// needs. *glsurface.Surface satisfies it; tests use fakes.
type Device interface {
	CreateBuffer(data []float32) (surface.BufferID, error)
	DeleteBuffer(id surface.BufferID)
	DrawTriangles(positions, normals surface.BufferID, vertexCount int32)
}

// defaultNormal stands in when a face vertex has neither a file normal nor a
// derived one. A flat +Z assumption kept for compatibility with the source
// data this viewer was built around, not for geometric correctness.
var defaultNormal = mgl32.Vec3{0, 0, 1}

// Buffer holds two GPU-resident streams: expanded positions and expanded
// normals, one entry per face-vertex. Both are uploaded once and released
// exactly once by Close.
type Buffer struct {
	dev       Device
	positions surface.BufferID
	normals   surface.BufferID

	vertexCount int32
	built       bool
	closed      bool
}

// Build walks every face of m in order and emits one (position, normal) pair
// per face-vertex. Polygons are not re-triangulated; consumers get the same
// fan/strip semantics the mesh file encodes. A face vertex without a valid
// vertex index emits (0,0,0) with a warning; the build never aborts for one
// malformed face.
func Build(dev Device, m *mesh.Mesh) (*Buffer, error) {
	total := 0
	for _, face := range m.Faces {
		total += len(face)
	}

	positions := make([]float32, 0, total*3)
	normals := make([]float32, 0, total*3)

	for fi, face := range m.Faces {
		for _, fv := range face {
			var p mgl32.Vec3
			if fv.Vertex > 0 && fv.Vertex <= len(m.Vertices) {
				p = m.Vertices[fv.Vertex-1]
			} else if fv.Vertex != 0 {
				logger.Warn("skipping bad vertex reference",
					zap.Int("face", fi),
					zap.Int("index", fv.Vertex),
				)
			}
			positions = append(positions, p[0], p[1], p[2])

			n := normalFor(m, fv)
			normals = append(normals, n[0], n[1], n[2])
		}
	}

	b := &Buffer{
		dev:         dev,
		vertexCount: int32(len(positions) / 3),
	}

	if len(positions) == 0 {
		logger.Warn("mesh has no faces, nothing to upload")
		return b, nil
	}

	var err error
	b.positions, err = dev.CreateBuffer(positions)
	if err != nil {
		return nil, fmt.Errorf("uploading vertex stream: %w", err)
	}
	b.normals, err = dev.CreateBuffer(normals)
	if err != nil {
		dev.DeleteBuffer(b.positions)
		return nil, fmt.Errorf("uploading normal stream: %w", err)
	}
	b.built = true

	logger.Info("geometry uploaded",
		zap.Int32("vertices", b.vertexCount),
		zap.Int("faces", len(m.Faces)),
	)
	return b, nil
}

// normalFor picks the normal for one face vertex: the file normal when the
// index resolves, else the loader-derived per-vertex normal, else the
// default.
func normalFor(m *mesh.Mesh, fv mesh.FaceVertex) mgl32.Vec3 {
	if fv.Normal > 0 && fv.Normal <= len(m.Normals) {
		return m.Normals[fv.Normal-1]
	}
	if fv.Vertex > 0 && fv.Vertex <= len(m.Derived) {
		return m.Derived[fv.Vertex-1]
	}
	return defaultNormal
}

// TriangleVertexCount returns the number of emitted vertices, one per
// face-vertex of the source mesh.
func (b *Buffer) TriangleVertexCount() int32 {
	return b.vertexCount
}

// Render binds both streams and issues one non-indexed triangle draw.
// No-op if the buffers were never built or already released.
func (b *Buffer) Render() {
	if b == nil || !b.built || b.closed {
		return
	}
	b.dev.DrawTriangles(b.positions, b.normals, b.vertexCount)
}

// Close releases both GPU buffers exactly once. Safe to call repeatedly and
// on a never-built instance.
func (b *Buffer) Close() {
	if b == nil || !b.built || b.closed {
		return
	}
	b.closed = true
	b.dev.DeleteBuffer(b.positions)
	b.dev.DeleteBuffer(b.normals)
}
