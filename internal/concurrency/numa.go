// File: internal/concurrency/numa.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// NUMA topology read from sysfs. Pinned workers that share a node share its
// memory bandwidth, which shows up in their runtimes.

package concurrency

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const sysNodeRoot = "/sys/devices/system/node"

// Topology maps NUMA nodes to their CPUs.
type Topology struct {
	Nodes map[int][]int `json:"nodes" yaml:"nodes"`
}

// NUMATopology reads the node layout of the host. Hosts without NUMA information
// report a single node 0 holding no CPUs.
func NUMATopology() Topology {
	return readTopology(sysNodeRoot)
}

// NodeOf returns the node holding cpu, or -1.
func (t Topology) NodeOf(cpu int) int {
	for node, cpus := range t.Nodes {
		for _, c := range cpus {
			if c == cpu {
				return node
			}
		}
	}
	return -1
}

func readTopology(root string) Topology {
	t := Topology{Nodes: make(map[int][]int)}
	dirs, err := filepath.Glob(filepath.Join(root, "node[0-9]*"))
	if err != nil || len(dirs) == 0 {
		t.Nodes[0] = nil
		return t
	}
	for _, dir := range dirs {
		id, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(dir), "node"))
		if err != nil {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, "cpulist"))
		if err != nil {
			t.Nodes[id] = nil
			continue
		}
		t.Nodes[id] = ParseCPUList(string(b))
	}
	return t
}

// ParseCPUList parses the kernel list format, e.g. "0-3,8,10-11". Malformed
// ranges are skipped.
func ParseCPUList(s string) []int {
	var cpus []int
	for _, part := range strings.Split(strings.TrimSpace(s), ",") {
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		a, err := strconv.Atoi(lo)
		if err != nil {
			continue
		}
		b := a
		if isRange {
			if b, err = strconv.Atoi(hi); err != nil || b < a {
				continue
			}
		}
		for c := a; c <= b; c++ {
			cpus = append(cpus, c)
		}
	}
	sort.Ints(cpus)
	return cpus
}
