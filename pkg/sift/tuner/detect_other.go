//go:build !linux && !darwin

package tuner

// Detect reports the CPU count and assumed memory defaults.
func Detect() (SystemResources, error) {
	return fallbackResources(), nil
}
