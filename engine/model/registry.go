package model

import (
	"fmt"
	"sync"

	"github.com/dimforge/kiss3d/common"
)

// Registry owns meshes by name with reference-counted lifetimes. A mesh is
// dropped once every node referencing it has released its handle. The
// registry is read-mostly during a frame; registration happens between
// frames.
type Registry struct {
	mu     sync.RWMutex
	meshes map[string]*registryEntry
}

type registryEntry struct {
	mesh Mesh
	refs int
}

// Default subdivision counts for the pre-registered primitive meshes.
const (
	defaultSphereSubdiv   = 50
	defaultRoundSubdiv    = 32
	defaultCapsuleSubdivs = 50
)

// NewRegistry creates a registry pre-populated with the unit primitives
// (cube, sphere, cone, cylinder). Callers scale them per node.
//
// Returns:
//   - *Registry: the populated registry
func NewRegistry() *Registry {
	r := &Registry{meshes: make(map[string]*registryEntry)}

	// Unit primitives cannot fail validation.
	cube, _ := NewMesh("cube", Cuboid(1, 1, 1))
	sphere, _ := NewMesh("sphere", Sphere(1, defaultSphereSubdiv, defaultSphereSubdiv))
	cone, _ := NewMesh("cone", Cone(1, 1, defaultRoundSubdiv))
	cylinder, _ := NewMesh("cylinder", Cylinder(1, 1, defaultRoundSubdiv))

	for _, m := range []Mesh{cube, sphere, cone, cylinder} {
		// Built-ins hold a permanent self-reference so user release cycles
		// never evict them.
		r.meshes[m.Name()] = &registryEntry{mesh: m, refs: 1}
	}
	return r
}

// Register adds a mesh built from loader-shaped data under the given name,
// with an initial reference count of zero.
//
// Parameters:
//   - name: the registry key
//   - data: the mesh data
//
// Returns:
//   - Mesh: the constructed mesh
//   - error: error if the data is invalid or the name is taken
func (r *Registry) Register(name string, data *common.MeshData) (Mesh, error) {
	m, err := NewMesh(name, data)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.meshes[name]; exists {
		return nil, fmt.Errorf("mesh %q is already registered", name)
	}
	r.meshes[name] = &registryEntry{mesh: m}
	return m, nil
}

// Acquire returns the named mesh and increments its reference count.
//
// Parameters:
//   - name: the registry key
//
// Returns:
//   - Mesh: the mesh, or nil if not registered
func (r *Registry) Acquire(name string) Mesh {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.meshes[name]
	if !ok {
		return nil
	}
	e.refs++
	return e.mesh
}

// Release decrements the reference count of the named mesh, removing it from
// the registry when the count reaches zero.
//
// Parameters:
//   - name: the registry key
//
// Returns:
//   - bool: true if the mesh was removed by this release
func (r *Registry) Release(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.meshes[name]
	if !ok {
		return false
	}
	e.refs--
	if e.refs <= 0 {
		delete(r.meshes, name)
		return true
	}
	return false
}

// Contains reports whether a mesh is registered under name.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.meshes[name]
	return ok
}

// Refs returns the current reference count for name, or 0 if absent.
func (r *Registry) Refs(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.meshes[name]; ok {
		return e.refs
	}
	return 0
}
