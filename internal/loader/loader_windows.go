//go:build windows

package loader

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func load(code []byte) (*Func, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(len(code)), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, &Error{Op: "VirtualAlloc", Err: err}
	}
	mem := unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(code))
	copy(mem, code)

	var oldProtect uint32
	if err := windows.VirtualProtect(addr, uintptr(len(code)), windows.PAGE_EXECUTE_READ, &oldProtect); err != nil {
		_ = windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
		return nil, &Error{Op: "VirtualProtect", Err: err}
	}

	return &Func{mem: mem, entry: addr}, nil
}

func unmap(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&mem[0]))
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return &Error{Op: "VirtualFree", Err: err}
	}
	return nil
}
