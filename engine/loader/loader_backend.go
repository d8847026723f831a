package loader

import "io"

// loaderBackend abstracts the mesh file format behind a single parse entry
// point, so additional formats slot in without touching the Loader surface.
type loaderBackend interface {
	// Parse reads one model file and returns its meshes.
	//
	// Parameters:
	//   - name: fallback mesh name for files without object statements
	//   - r: the reader providing the file contents
	//
	// Returns:
	//   - []NamedMesh: one entry per object in the file
	//   - error: error if the contents are malformed
	Parse(name string, r io.Reader) ([]NamedMesh, error)
}
