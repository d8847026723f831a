package common

// Coalesce picks the first value in the list that differs from the type's zero
// value. Used to apply defaults to optional staging fields: pass the configured
// value first and the fallback last.
//
// Parameters:
//   - values: candidate values in priority order
//
// Returns:
//   - T: the first non-zero candidate, or the zero value when every candidate is zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
