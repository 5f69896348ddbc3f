package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/quaywood/handviewer/internal/logger"
)

// Load reads an OBJ-style mesh description from path.
//
// Recognized records are v (3 floats), vn (3 floats), vt (2 floats) and
// f (three or more v[/t][/n] index groups). Comment and blank lines are
// skipped, unknown record kinds ignored. A missing file wraps fs.ErrNotExist;
// an unparseable numeric field returns a *ParseError. Non-zero face indices
// that fall outside the parsed arrays are zeroed with a warning rather than
// failing the load.
func Load(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mesh file %s: %w", path, err)
	}
	defer f.Close()

	m := &Mesh{}
	scanner := bufio.NewScanner(f)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, &ParseError{Path: path, Line: lineNo, Err: err}
			}
			m.Vertices = append(m.Vertices, v)

		case "vn":
			n, err := parseVec3(fields[1:])
			if err != nil {
				return nil, &ParseError{Path: path, Line: lineNo, Err: err}
			}
			m.Normals = append(m.Normals, n)

		case "vt":
			t, err := parseVec2(fields[1:])
			if err != nil {
				return nil, &ParseError{Path: path, Line: lineNo, Err: err}
			}
			m.TexCoords = append(m.TexCoords, t)

		case "f":
			face, err := parseFace(fields[1:])
			if err != nil {
				return nil, &ParseError{Path: path, Line: lineNo, Err: err}
			}
			m.Faces = append(m.Faces, face)

		default:
			// Unknown record kind (o, g, s, usemtl, ...) is ignored.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading mesh file %s: %w", path, err)
	}

	m.clampIndices(path)

	if len(m.Normals) == 0 && len(m.Faces) > 0 {
		m.DeriveNormals()
	}

	logger.Info("mesh loaded",
		zap.String("path", path),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("normals", len(m.Normals)),
		zap.Int("faces", len(m.Faces)),
	)
	return m, nil
}

// clampIndices zeroes non-zero face indices that do not resolve within the
// parsed arrays. The fault is reported here, at load time, but recovered:
// a zeroed index is treated as absent downstream.
func (m *Mesh) clampIndices(path string) {
	for fi := range m.Faces {
		for vi := range m.Faces[fi] {
			fv := &m.Faces[fi][vi]
			if fv.Vertex != 0 && (fv.Vertex < 0 || fv.Vertex > len(m.Vertices)) {
				logger.Warn("face vertex index out of range",
					zap.String("path", path),
					zap.Int("face", fi),
					zap.Int("index", fv.Vertex),
				)
				fv.Vertex = 0
			}
			if fv.TexCoord != 0 && (fv.TexCoord < 0 || fv.TexCoord > len(m.TexCoords)) {
				logger.Warn("face texcoord index out of range",
					zap.String("path", path),
					zap.Int("face", fi),
					zap.Int("index", fv.TexCoord),
				)
				fv.TexCoord = 0
			}
			if fv.Normal != 0 && (fv.Normal < 0 || fv.Normal > len(m.Normals)) {
				logger.Warn("face normal index out of range",
					zap.String("path", path),
					zap.Int("face", fi),
					zap.Int("index", fv.Normal),
				)
				fv.Normal = 0
			}
		}
	}
}

func parseVec3(fields []string) (mgl32.Vec3, error) {
	if len(fields) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("expected 3 coordinates, got %d", len(fields))
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("bad coordinate %q: %w", fields[i], err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

func parseVec2(fields []string) (mgl32.Vec2, error) {
	if len(fields) < 2 {
		return mgl32.Vec2{}, fmt.Errorf("expected 2 coordinates, got %d", len(fields))
	}
	var v mgl32.Vec2
	for i := 0; i < 2; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec2{}, fmt.Errorf("bad coordinate %q: %w", fields[i], err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// parseFace parses index groups of the form v, v/t, v//n or v/t/n.
// Missing sub-fields parse as 0 (absent), never as an error.
func parseFace(groups []string) (Face, error) {
	if len(groups) < 3 {
		return nil, fmt.Errorf("face needs at least 3 vertices, got %d", len(groups))
	}
	face := make(Face, 0, len(groups))
	for _, g := range groups {
		parts := strings.Split(g, "/")
		var fv FaceVertex
		for i, p := range parts {
			if i > 2 {
				break
			}
			if p == "" {
				continue
			}
			idx, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("bad face index %q: %w", g, err)
			}
			switch i {
			case 0:
				fv.Vertex = idx
			case 1:
				fv.TexCoord = idx
			case 2:
				fv.Normal = idx
			}
		}
		face = append(face, fv)
	}
	return face, nil
}
