//go:build linux
// +build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific implementation using sched_setaffinity(2) and getcpu(2) on the calling thread.

package affinity

import (
	"unsafe"

	"github.com/momentics/schedbench/api"
	"golang.org/x/sys/unix"
)

// setAffinityPlatform sets the calling thread's affinity to a single CPU.
func setAffinityPlatform(cpuID int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)
	// pid 0 addresses the calling thread, not the whole process.
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return api.NewError(api.ErrCodeSchedulingAttribute, "sched_setaffinity", err).WithContext("cpu", cpuID)
	}
	return nil
}

func currentCPUPlatform() (int, error) {
	var cpu, node uint32
	_, _, errno := unix.RawSyscall(unix.SYS_GETCPU,
		uintptr(unsafe.Pointer(&cpu)), uintptr(unsafe.Pointer(&node)), 0)
	if errno != 0 {
		return -1, api.NewError(api.ErrCodeNotSupported, "getcpu", errno)
	}
	return int(cpu), nil
}

func allowedPlatform() ([]int, error) {
	var mask unix.CPUSet
	if err := unix.SchedGetaffinity(0, &mask); err != nil {
		return nil, api.NewError(api.ErrCodeNotSupported, "sched_getaffinity", err)
	}
	cpus := make([]int, 0, mask.Count())
	for i := 0; i < maskBits(&mask); i++ {
		if mask.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	return cpus, nil
}

func maskBits(mask *unix.CPUSet) int {
	return len(mask) * int(unsafe.Sizeof(mask[0])) * 8
}
