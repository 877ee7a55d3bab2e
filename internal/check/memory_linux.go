//go:build linux

package check

import "golang.org/x/sys/unix"

// physicalMemory returns total RAM in bytes.
func physicalMemory() (uint64, bool) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, false
	}
	return uint64(info.Totalram) * uint64(info.Unit), true
}
