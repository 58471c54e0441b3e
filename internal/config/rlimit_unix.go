//go:build unix

package config

import "golang.org/x/sys/unix"

// DescriptorLimit devuelve el límite blando de archivos abiertos del proceso.
func DescriptorLimit() (uint64, error) {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return 0, err
	}
	return uint64(rl.Cur), nil
}
