package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dimforge/kiss3d/common"
)

// objLoaderBackend parses Wavefront OBJ files into mesh data. Supported
// statements: v, vt, vn, o, g, f (with i, i/t, i//n and i/t/n corner forms,
// positive or negative indices, fan-triangulated polygons). Material
// statements (mtllib, usemtl) and smoothing groups are skipped; materials
// are assigned on the scene node, not imported from the file.
type objLoaderBackend struct{}

var _ loaderBackend = &objLoaderBackend{}

func newOBJLoaderBackend() loaderBackend {
	return &objLoaderBackend{}
}

// objCorner is a position/uv/normal index triple straight from a face
// statement, 1-based per the format. Zero means the component is absent.
type objCorner struct {
	pos, uv, normal int
}

// objBuilder accumulates one output mesh. OBJ indexes the three streams
// independently, so every distinct corner triple becomes one output vertex,
// deduplicated through the corner map.
type objBuilder struct {
	name    string
	corners map[objCorner]uint32
	data    common.MeshData
}

func newOBJBuilder(name string) *objBuilder {
	return &objBuilder{
		name:    name,
		corners: make(map[objCorner]uint32),
	}
}

func (o *objLoaderBackend) Parse(name string, r io.Reader) ([]NamedMesh, error) {
	var positions [][3]float32
	var uvs [][2]float32
	var normals [][3]float32

	var meshes []NamedMesh
	current := newOBJBuilder(name)
	flush := func() {
		if len(current.data.Indices) > 0 {
			meshes = append(meshes, NamedMesh{Name: current.name, Data: current.data})
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		keyword, args := fields[0], fields[1:]

		switch keyword {
		case "v":
			p, err := parseFloats3(args)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex position: %w", lineNo, err)
			}
			positions = append(positions, p)
		case "vt":
			if len(args) < 2 {
				return nil, fmt.Errorf("line %d: texture coordinate needs 2 components", lineNo)
			}
			uv, err := parseFloats2(args[:2])
			if err != nil {
				return nil, fmt.Errorf("line %d: texture coordinate: %w", lineNo, err)
			}
			// OBJ puts v=0 at the bottom of the image; the texture origin
			// is the top-left corner.
			uv[1] = 1 - uv[1]
			uvs = append(uvs, uv)
		case "vn":
			n, err := parseFloats3(args)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex normal: %w", lineNo, err)
			}
			normals = append(normals, n)
		case "o", "g":
			flush()
			objName := name
			if len(args) > 0 {
				objName = strings.Join(args, " ")
			}
			current = newOBJBuilder(objName)
		case "f":
			if len(args) < 3 {
				return nil, fmt.Errorf("line %d: face needs at least 3 corners", lineNo)
			}
			face := make([]uint32, 0, len(args))
			for _, arg := range args {
				corner, err := parseCorner(arg, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				face = append(face, current.vertex(corner, positions, uvs, normals))
			}
			// Fan triangulation handles quads and larger convex polygons.
			for i := 1; i+1 < len(face); i++ {
				current.data.Indices = append(current.data.Indices, face[0], face[i], face[i+1])
			}
		default:
			// mtllib, usemtl, s, l and friends are out of scope.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read obj stream: %w", err)
	}
	flush()

	if len(meshes) == 0 {
		return nil, fmt.Errorf("obj stream contains no faces")
	}
	for i := range meshes {
		if err := meshes[i].Data.Validate(); err != nil {
			return nil, fmt.Errorf("object %q: %w", meshes[i].Name, err)
		}
	}
	return meshes, nil
}

// vertex returns the output index of a corner triple, appending a new vertex
// the first time the triple is seen.
func (b *objBuilder) vertex(c objCorner, positions [][3]float32, uvs [][2]float32, normals [][3]float32) uint32 {
	if idx, ok := b.corners[c]; ok {
		return idx
	}

	idx := uint32(len(b.data.Positions))
	b.data.Positions = append(b.data.Positions, positions[c.pos-1])
	if c.uv != 0 {
		b.data.UVs = append(b.data.UVs, uvs[c.uv-1])
	} else if len(b.data.UVs) > 0 {
		b.data.UVs = append(b.data.UVs, [2]float32{})
	}
	if c.normal != 0 {
		b.data.Normals = append(b.data.Normals, normals[c.normal-1])
	} else if len(b.data.Normals) > 0 {
		b.data.Normals = append(b.data.Normals, [3]float32{})
	}

	b.corners[c] = idx
	return idx
}

// parseCorner resolves one face corner of the form i, i/t, i//n or i/t/n to
// 1-based absolute indices. Negative indices count back from the end of the
// respective stream.
func parseCorner(s string, numPos, numUV, numNormal int) (objCorner, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return objCorner{}, fmt.Errorf("malformed face corner %q", s)
	}

	var c objCorner
	var err error
	if c.pos, err = resolveIndex(parts[0], numPos); err != nil {
		return objCorner{}, fmt.Errorf("face corner %q: position: %w", s, err)
	}
	if c.pos == 0 {
		return objCorner{}, fmt.Errorf("face corner %q: missing position index", s)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.uv, err = resolveIndex(parts[1], numUV); err != nil {
			return objCorner{}, fmt.Errorf("face corner %q: texture: %w", s, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.normal, err = resolveIndex(parts[2], numNormal); err != nil {
			return objCorner{}, fmt.Errorf("face corner %q: normal: %w", s, err)
		}
	}
	return c, nil
}

// resolveIndex converts one OBJ index to a 1-based absolute index, or 0 for
// an empty component.
func resolveIndex(s string, count int) (int, error) {
	if s == "" {
		return 0, nil
	}
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	if idx < 0 {
		idx = count + idx + 1
	}
	if idx < 1 || idx > count {
		return 0, fmt.Errorf("index %s out of range (%d entries)", s, count)
	}
	return idx, nil
}

func parseFloats3(args []string) ([3]float32, error) {
	if len(args) < 3 {
		return [3]float32{}, fmt.Errorf("need 3 components, got %d", len(args))
	}
	var out [3]float32
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return [3]float32{}, fmt.Errorf("invalid component %q", args[i])
		}
		out[i] = float32(v)
	}
	return out, nil
}

func parseFloats2(args []string) ([2]float32, error) {
	var out [2]float32
	for i := 0; i < 2; i++ {
		v, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return [2]float32{}, fmt.Errorf("invalid component %q", args[i])
		}
		out[i] = float32(v)
	}
	return out, nil
}
