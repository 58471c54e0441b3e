//go:build !linux

package worker

func adviseSequential(f any) {}
