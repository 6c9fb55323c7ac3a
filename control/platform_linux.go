//go:build linux
// +build linux

// control/platform_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux probes: CPU topology visible to the process, real-time and memlock limits,
// and CPU feature flags.

package control

import (
	"runtime"

	"github.com/momentics/schedbench/affinity"
	"github.com/momentics/schedbench/internal/concurrency"
	"golang.org/x/sys/cpu"
)

// RegisterPlatformProbes sets Linux-specific debug probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	registerCommonProbes(dp)
	dp.RegisterProbe("platform.allowed_cpus", func() any {
		cpus, err := affinity.Allowed()
		if err != nil {
			return err.Error()
		}
		return cpus
	})
	dp.RegisterProbe("platform.limits", func() any {
		return concurrency.ReadLimits()
	})
	dp.RegisterProbe("platform.rt_throttled", func() any {
		return concurrency.ReadLimits().RTRuntimeUs > 0
	})
	dp.RegisterProbe("platform.cpu_features", cpuFeatures)
}

func cpuFeatures() any {
	switch runtime.GOARCH {
	case "amd64", "386":
		return map[string]bool{
			"sse2":   cpu.X86.HasSSE2,
			"sse42":  cpu.X86.HasSSE42,
			"avx2":   cpu.X86.HasAVX2,
			"avx512": cpu.X86.HasAVX512F,
		}
	case "arm64":
		return map[string]bool{
			"asimd":   cpu.ARM64.HasASIMD,
			"atomics": cpu.ARM64.HasATOMICS,
			"sve":     cpu.ARM64.HasSVE,
		}
	}
	return map[string]bool{}
}
