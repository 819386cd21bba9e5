package smapgo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartitionBasename(t *testing.T) {
	require.Equal(t, "smap-000000.part", PartitionBasename(0))
	require.Equal(t, "smap-000005.part", PartitionBasename(5))
	require.Equal(t, "smap-001023.part", PartitionBasename(PartitionsMax-1))
}

func TestAppendPartitionPath_SeparatorNormalization(t *testing.T) {
	// With and without a trailing separator the result is identical: exactly
	// one separator between directory and basename.
	with := string(appendPartitionPath(nil, "/data/db/", 5))
	without := string(appendPartitionPath(nil, "/data/db", 5))

	require.Equal(t, without, with)
	require.Equal(t, "smap-000005.part", with[len("/data/db/"):])
	require.NotContains(t, with, "//")
}

func TestAppendPartitionPath_ReusesBuffer(t *testing.T) {
	buf := make([]byte, 0, 256)

	seen := make(map[string]struct{})
	for index := 0; index < PartitionsMax; index++ {
		buf = appendPartitionPath(buf[:0], "/data/db", index)
		path := string(buf)
		require.Equal(t, fmt.Sprintf("/data/db/smap-%06d.part", index), path)
		seen[path] = struct{}{}
	}
	require.Len(t, seen, PartitionsMax, "names must be distinct per index")
}

func TestPartitionPath(t *testing.T) {
	require.Equal(t, "/data/db/smap-000000.part", partitionPath("/data/db", 0))
}
