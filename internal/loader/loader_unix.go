//go:build unix

package loader

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

func load(code []byte) (*Func, error) {
	mem, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, &Error{Op: "mmap", Err: err}
	}
	copy(mem, code)

	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		_ = unix.Munmap(mem)
		return nil, &Error{Op: "mprotect", Err: err}
	}

	return &Func{mem: mem, entry: uintptr(unsafe.Pointer(&mem[0]))}, nil
}

func unmap(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	if err := unix.Munmap(mem); err != nil {
		return &Error{Op: "munmap", Err: err}
	}
	return nil
}
