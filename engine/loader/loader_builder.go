package loader

// LoaderBuilderOption is a functional option for configuring a Loader.
// Use the With* functions to create options that are applied directly to the loader instance.
type LoaderBuilderOption func(*loader)

// WithBackendType selects the file format backend.
//
// Parameters:
//   - backendType: the backend to use (default BackendTypeOBJ)
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithBackendType(backendType LoaderBackendType) LoaderBuilderOption {
	return func(l *loader) {
		switch backendType {
		case BackendTypeOBJ:
			l.backend = newOBJLoaderBackend()
		}
	}
}
