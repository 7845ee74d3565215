//go:build windows

package memory

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func available() (uint64, error) {
	var st windows.MemoryStatusEx
	st.Length = uint32(unsafe.Sizeof(st))
	if err := windows.GlobalMemoryStatusEx(&st); err != nil {
		return 0, err
	}
	return st.AvailPhys, nil
}
