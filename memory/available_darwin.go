//go:build darwin

package memory

import "golang.org/x/sys/unix"

func available() (uint64, error) {
	free, err := unix.SysctlUint32("vm.page_free_count")
	if err != nil {
		return 0, err
	}
	return uint64(free) * uint64(unix.Getpagesize()), nil
}
