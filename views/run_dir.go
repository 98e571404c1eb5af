package views

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrDirAllocation means no collision-free run directory could be
// obtained under the configured base directory.
var ErrDirAllocation = errors.New("could not allocate run directory")

// allocRetries bounds collision retries before giving up. Tokens are
// 8 hex chars of a v4 UUID, so exhausting this means something other
// than bad luck (permissions, clock-stuck RNG).
const allocRetries = 5

// AllocateRunDir creates a fresh, collision-free child of baseDir named
// run_<token> and returns its path. The directory is created eagerly,
// before any capture starts, so two sequential runs under the same base
// can never overwrite each other.
func AllocateRunDir(baseDir string) (string, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return "", fmt.Errorf("%w: create base %s: %v", ErrDirAllocation, baseDir, err)
	}

	for i := 0; i < allocRetries; i++ {
		token := uuid.New().String()[:8]
		dir := filepath.Join(baseDir, "run_"+token)

		// os.Mkdir (not MkdirAll) so an existing sibling surfaces as
		// EEXIST and triggers a retry instead of silent reuse.
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("%w: %v", ErrDirAllocation, err)
		}
	}
	return "", fmt.Errorf("%w: %d collisions under %s", ErrDirAllocation, allocRetries, baseDir)
}

// ShardIndex maps a frame counter to its shard directory index:
// frames 0..N-1 land in shard 0, N..2N-1 in shard 1, and so on.
func ShardIndex(frame uint64, elementPerFolder int) uint64 {
	return frame / uint64(elementPerFolder)
}

// ShardName renders a shard index as its zero-padded directory name.
func ShardName(idx uint64) string {
	return fmt.Sprintf("%04d", idx)
}
