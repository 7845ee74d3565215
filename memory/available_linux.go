//go:build linux

package memory

import (
	"os"

	"golang.org/x/sys/unix"
)

const procMemInfo = "/proc/meminfo"

// available prefers the kernel's MemAvailable estimate, which includes
// reclaimable page cache, and falls back to sysinfo(2) free+buffer RAM
// on kernels that do not report it.
func available() (uint64, error) {
	if f, err := os.Open(procMemInfo); err == nil {
		n, perr := parseMemInfo(f)
		_ = f.Close()
		if perr == nil {
			return n, nil
		}
	}
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, err
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return (uint64(info.Freeram) + uint64(info.Bufferram)) * unit, nil
}
