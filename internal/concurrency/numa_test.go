// File: internal/concurrency/numa_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCPUList(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3, 8, 10, 11}, ParseCPUList("0-3,8,10-11\n"))
	assert.Equal(t, []int{5}, ParseCPUList("5"))
	assert.Equal(t, []int{1}, ParseCPUList("x,1,4-2"))
	assert.Empty(t, ParseCPUList(""))
}

func TestReadTopology(t *testing.T) {
	root := t.TempDir()
	for node, list := range map[string]string{"node0": "0-1\n", "node1": "2,3\n"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, node), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, node, "cpulist"), []byte(list), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "possible"), 0o755))

	topo := readTopology(root)
	assert.Equal(t, map[int][]int{0: {0, 1}, 1: {2, 3}}, topo.Nodes)
	assert.Equal(t, 1, topo.NodeOf(3))
	assert.Equal(t, -1, topo.NodeOf(9))

	empty := readTopology(filepath.Join(root, "missing"))
	assert.Len(t, empty.Nodes, 1)
}
