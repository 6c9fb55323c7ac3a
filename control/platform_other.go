//go:build !linux
// +build !linux

// control/platform_other.go
// Author: momentics <momentics@gmail.com>

package control

// RegisterPlatformProbes registers the portable probes only.
func RegisterPlatformProbes(dp *DebugProbes) {
	registerCommonProbes(dp)
}
