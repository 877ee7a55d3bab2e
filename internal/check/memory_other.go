//go:build !linux

package check

func physicalMemory() (uint64, bool) { return 0, false }
