package controller

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdg-runner/services/sim"
	"sdg-runner/utils"
)

func sessionConfig(t *testing.T) *utils.SDGConfig {
	t.Helper()
	return &utils.SDGConfig{
		NumImages:         5,
		PrimPath:          "/World",
		CameraNames:       []string{"cam0"},
		CameraResolutions: [][]int{{16, 12}},
		DataDir:           t.TempDir(),
		AnnotatorLists:    [][]string{{"rgb", "pose"}},
		ImageFormats:      []string{"png"},
		AnnotFormats:      []string{"npy"},
		ElementPerFolder:  2,
	}
}

func newSession(t *testing.T, cfg *utils.SDGConfig, stepper sim.Stepper) *SessionController {
	t.Helper()
	sceneGraph := sim.NewSyntheticScene(cfg.PrimPath, cfg.CameraNames, cfg.CameraSettings)
	bindings, err := BuildBindings(cfg, sceneGraph)
	require.NoError(t, err)

	rig := sim.NewSyntheticRig(bindings)
	if stepper == nil {
		stepper = rig
	}
	sess, err := NewSessionController(cfg, bindings, stepper, rig)
	require.NoError(t, err)
	return sess
}

// failStepper fails the sample advance for the frame at index failAt.
type failStepper struct {
	failAt int
	calls  int
}

func (f *failStepper) Step(ctx context.Context) error {
	if f.calls == f.failAt {
		return errors.New("render timeout")
	}
	f.calls++
	return nil
}

func listShardDirs(t *testing.T, camDir string) []string {
	t.Helper()
	entries, err := os.ReadDir(camDir)
	require.NoError(t, err)
	var shards []string
	for _, e := range entries {
		if e.IsDir() {
			shards = append(shards, e.Name())
		}
	}
	sort.Strings(shards)
	return shards
}

func countPrefixed(t *testing.T, camDir, prefix string) int {
	t.Helper()
	n := 0
	for _, shard := range listShardDirs(t, camDir) {
		entries, err := os.ReadDir(filepath.Join(camDir, shard))
		require.NoError(t, err)
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), prefix) {
				n++
			}
		}
	}
	return n
}

// TestSessionController_EndToEnd tests the scenario from the design
// docs: 5 frames, 2 per shard, one camera with rgb+pose.
func TestSessionController_EndToEnd(t *testing.T) {
	cfg := sessionConfig(t)
	sess := newSession(t, cfg, nil)

	require.NoError(t, sess.Run(context.Background()))
	assert.Equal(t, uint64(5), sess.FramesDone())

	camDir := filepath.Join(sess.RunDir(), "cam0")
	assert.Equal(t, []string{"0000", "0001", "0002"}, listShardDirs(t, camDir))

	// frames 0,1 / 2,3 / 4
	for shard, frames := range map[string][]string{
		"0000": {"rgb_000000.png", "rgb_000001.png"},
		"0001": {"rgb_000002.png", "rgb_000003.png"},
		"0002": {"rgb_000004.png"},
	} {
		entries, err := os.ReadDir(filepath.Join(camDir, shard))
		require.NoError(t, err)
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		sort.Strings(names)
		assert.Equal(t, frames, names, "shard %s", shard)
	}

	// one growing pose table with 5 rows
	f, err := os.Open(filepath.Join(camDir, "pose.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 6) // header + 5

	// intrinsics written exactly once across the 5 frames
	assert.FileExists(t, filepath.Join(camDir, "intrinsics.json"))
}

// TestSessionController_AbortMidRun tests fail-fast semantics: a sample
// failure at frame K leaves exactly K frames on disk and reports K-1.
func TestSessionController_AbortMidRun(t *testing.T) {
	cfg := sessionConfig(t)
	sess := newSession(t, cfg, &failStepper{failAt: 3})

	err := sess.Run(context.Background())
	require.Error(t, err)

	var abort *CaptureAbortedError
	require.ErrorAs(t, err, &abort)
	assert.Equal(t, 3, abort.Frame)
	assert.Equal(t, 2, abort.LastCompleted)
	assert.Equal(t, uint64(3), sess.FramesDone())

	camDir := filepath.Join(sess.RunDir(), "cam0")
	assert.Equal(t, 3, countPrefixed(t, camDir, "rgb_"))

	// pose rows for completed frames were flushed on the abort path
	f, err := os.Open(filepath.Join(camDir, "pose.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 4) // header + 3
}

// TestSessionController_FailOnFirstFrame tests LastCompleted = -1.
func TestSessionController_FailOnFirstFrame(t *testing.T) {
	cfg := sessionConfig(t)
	sess := newSession(t, cfg, &failStepper{failAt: 0})

	var abort *CaptureAbortedError
	require.ErrorAs(t, sess.Run(context.Background()), &abort)
	assert.Equal(t, -1, abort.LastCompleted)
	assert.Equal(t, uint64(0), sess.FramesDone())
}

// TestSessionController_OperatorStop tests clean early cancellation at a
// frame boundary.
func TestSessionController_OperatorStop(t *testing.T) {
	cfg := sessionConfig(t)
	sess := newSession(t, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sess.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(0), sess.FramesDone())
}

// TestSessionController_UniqueRunDirs tests run isolation under one
// configured base directory.
func TestSessionController_UniqueRunDirs(t *testing.T) {
	cfg := sessionConfig(t)
	a := newSession(t, cfg, nil)
	b := newSession(t, cfg, nil)
	assert.NotEqual(t, a.RunDir(), b.RunDir())
}

// TestSessionController_MismatchBeforeAnyWrite tests that a config
// mismatch surfaces before the data dir is touched at all.
func TestSessionController_MismatchBeforeAnyWrite(t *testing.T) {
	cfg := sessionConfig(t)
	cfg.AnnotatorLists = nil // length mismatch

	sceneGraph := sim.NewSyntheticScene(cfg.PrimPath, cfg.CameraNames, nil)
	_, err := BuildBindings(cfg, sceneGraph)
	assert.ErrorIs(t, err, ErrConfigMismatch)

	entries, err := os.ReadDir(cfg.DataDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no run directory may exist after a config error")
}

// TestSessionController_MultiCamera tests per-camera trees in one run.
func TestSessionController_MultiCamera(t *testing.T) {
	cfg := sessionConfig(t)
	cfg.CameraNames = []string{"cam0", "cam1"}
	cfg.CameraResolutions = [][]int{{16, 12}, {8, 6}}
	cfg.AnnotatorLists = [][]string{{"rgb", "pose"}, {"depth", "semantic", "ir"}}
	cfg.ImageFormats = []string{"png", "bmp"}
	cfg.AnnotFormats = []string{"npy", "npy"}
	cfg.NumImages = 3

	sess := newSession(t, cfg, nil)
	require.NoError(t, sess.Run(context.Background()))

	cam1 := filepath.Join(sess.RunDir(), "cam1")
	assert.Equal(t, 3, countPrefixed(t, cam1, "depth_"))
	assert.Equal(t, 3, countPrefixed(t, cam1, "semantic_0"))      // label maps
	assert.Equal(t, 3, countPrefixed(t, cam1, "semantic_labels")) // id -> class maps
	assert.Equal(t, 3, countPrefixed(t, cam1, "ir_"))
	assert.FileExists(t, filepath.Join(cam1, "intrinsics.json"))
	assert.NoFileExists(t, filepath.Join(cam1, "pose.csv"))
}
