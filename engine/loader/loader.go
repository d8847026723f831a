package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dimforge/kiss3d/common"
)

// LoaderBackendType identifies the mesh file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeOBJ selects the Wavefront OBJ loader backend.
	BackendTypeOBJ LoaderBackendType = iota
)

// NamedMesh pairs one mesh of a model file with its object name. Files
// without object statements yield a single mesh named after the file.
type NamedMesh struct {
	Name string
	Data common.MeshData
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	cache map[string][]NamedMesh

	backend loaderBackend
}

// Loader imports mesh files and caches the parsed results. The file format
// is abstracted behind a generic backend selected by file extension.
type Loader interface {
	// Load imports a mesh file and caches the result by file path.
	// If the file is already cached, the cached meshes are returned.
	//
	// Parameters:
	//   - path: the file path to the mesh file
	//
	// Returns:
	//   - []NamedMesh: one entry per object in the file
	//   - error: error if reading or parsing fails
	Load(path string) ([]NamedMesh, error)

	// LoadReader imports meshes from a reader stream and caches them by the
	// given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded meshes
	//   - r: the reader providing mesh data
	//
	// Returns:
	//   - []NamedMesh: one entry per object in the stream
	//   - error: error if parsing fails
	LoadReader(name string, r io.Reader) ([]NamedMesh, error)

	// Cached reports whether meshes are cached under the given name.
	//
	// Parameters:
	//   - name: the cache key to query
	//
	// Returns:
	//   - bool: true if an entry exists
	Cached(name string) bool

	// Evict removes the cache entry under the given name, if present.
	//
	// Parameters:
	//   - name: the cache key to remove
	Evict(name string)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the provided options.
// Defaults to the OBJ backend.
//
// Parameters:
//   - options: functional options for loader configuration
//
// Returns:
//   - Loader: the newly created loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		cache:   make(map[string][]NamedMesh),
		backend: newOBJLoaderBackend(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *loader) Load(path string) ([]NamedMesh, error) {
	l.mu.RLock()
	if cached, ok := l.cache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	if err := validateExtension(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh file: %w", err)
	}
	defer f.Close()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	meshes, err := l.backend.Parse(base, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	l.mu.Lock()
	l.cache[path] = meshes
	l.mu.Unlock()
	return meshes, nil
}

func (l *loader) LoadReader(name string, r io.Reader) ([]NamedMesh, error) {
	l.mu.RLock()
	if cached, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	meshes, err := l.backend.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	l.mu.Lock()
	l.cache[name] = meshes
	l.mu.Unlock()
	return meshes, nil
}

func (l *loader) Cached(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.cache[name]
	return ok
}

func (l *loader) Evict(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, name)
}

func validateExtension(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return nil
	default:
		return fmt.Errorf("unsupported mesh file extension: %s", filepath.Ext(path))
	}
}
