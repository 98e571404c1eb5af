package views

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAllocateRunDir_Unique tests that sequential runs under one base
// never collide (the run_id uniqueness property).
func TestAllocateRunDir_Unique(t *testing.T) {
	base := t.TempDir()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		dir, err := AllocateRunDir(base)
		require.NoError(t, err)
		assert.False(t, seen[dir], "duplicate run dir %s", dir)
		seen[dir] = true

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir(), "run dir created eagerly")
	}
}

// TestAllocateRunDir_CreatesBase tests allocation under a missing base.
func TestAllocateRunDir_CreatesBase(t *testing.T) {
	base := t.TempDir() + "/deep/nested/output"
	dir, err := AllocateRunDir(base)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

// TestShardIndex_Boundaries tests the shard arithmetic, including the
// exact boundary frames.
func TestShardIndex_Boundaries(t *testing.T) {
	// element_per_folder = 1000
	assert.Equal(t, uint64(0), ShardIndex(0, 1000))
	assert.Equal(t, uint64(0), ShardIndex(999, 1000))
	assert.Equal(t, uint64(1), ShardIndex(1000, 1000))
	assert.Equal(t, uint64(1), ShardIndex(1999, 1000))
	assert.Equal(t, uint64(2), ShardIndex(2000, 1000))

	// element_per_folder = 2
	assert.Equal(t, uint64(0), ShardIndex(0, 2))
	assert.Equal(t, uint64(0), ShardIndex(1, 2))
	assert.Equal(t, uint64(1), ShardIndex(2, 2))
	assert.Equal(t, uint64(1), ShardIndex(3, 2))
	assert.Equal(t, uint64(2), ShardIndex(4, 2))

	// element_per_folder = 1 degenerates to one frame per shard
	assert.Equal(t, uint64(7), ShardIndex(7, 1))
}

// TestShardName tests zero-padded shard directory naming.
func TestShardName(t *testing.T) {
	assert.Equal(t, "0000", ShardName(0))
	assert.Equal(t, "0042", ShardName(42))
	assert.Equal(t, "9999", ShardName(9999))
	assert.Equal(t, "10000", ShardName(10000)) // padding widens, never truncates
}
