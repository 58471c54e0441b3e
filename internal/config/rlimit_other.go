//go:build !unix

package config

// DescriptorLimit devuelve 0 (sin límite conocido) fuera de unix.
func DescriptorLimit() (uint64, error) {
	return 0, nil
}
