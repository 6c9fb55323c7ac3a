// control/platform.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"runtime"

	"github.com/momentics/schedbench/internal/concurrency"
)

func registerCommonProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.os", func() any { return runtime.GOOS + "/" + runtime.GOARCH })
	dp.RegisterProbe("platform.cpus", func() any { return runtime.NumCPU() })
	dp.RegisterProbe("platform.gomaxprocs", func() any { return runtime.GOMAXPROCS(0) })
	dp.RegisterProbe("platform.numa", func() any { return concurrency.NUMATopology() })
	dp.RegisterProbe("process.memory_locked", func() any { return concurrency.MemoryLocked() })
}
