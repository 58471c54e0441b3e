package worker

import "golang.org/x/sys/unix"

// adviseSequential avisa al kernel que el archivo se lee de principio a fin.
// Solo aplica cuando el archivo es un *os.File.
func adviseSequential(f any) {
	if fd, ok := f.(interface{ Fd() uintptr }); ok {
		_ = unix.Fadvise(int(fd.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
	}
}
