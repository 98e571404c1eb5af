package controller

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"sdg-runner/models"
	"sdg-runner/services/sim"
	"sdg-runner/utils"
	"sdg-runner/views"
)

// CaptureAbortedError reports a mid-run failure of the sample-advance
// collaborator. Already-serialized frames stay on disk (no rollback);
// LastCompleted tells the caller how far the run got.
type CaptureAbortedError struct {
	Frame         int   // frame whose sample advance failed
	LastCompleted int   // last fully persisted frame index, -1 if none
	Err           error // underlying collaborator error
}

func (e *CaptureAbortedError) Error() string {
	return fmt.Sprintf("capture aborted at frame %d (last completed %d): %v",
		e.Frame, e.LastCompleted, e.Err)
}

func (e *CaptureAbortedError) Unwrap() error { return e.Err }

// SessionController drives one synthetic-data-generation run: a bounded
// capture loop over num_images frames, one sample advanced and fully
// persisted before the next begins.
type SessionController struct {
	cfg      *utils.SDGConfig
	bindings []models.CameraBinding
	stepper  sim.Stepper
	source   sim.PayloadSource
	ser      *views.Serializer

	framesDone uint64 // atomic, read by the stats ticker
}

// NewSessionController allocates the run directory (eagerly, before any
// capture) and wires the serializer. All binding validation must have
// happened already, so the only side effect on failure here is at most
// an empty run directory.
func NewSessionController(cfg *utils.SDGConfig, bindings []models.CameraBinding, stepper sim.Stepper, source sim.PayloadSource) (*SessionController, error) {
	runDir, err := views.AllocateRunDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	utils.L().Info("session controller ready  run=%s frames=%d epf=%d cameras=%d",
		runDir, cfg.NumImages, cfg.ElementPerFolder, len(bindings))

	return &SessionController{
		cfg:      cfg,
		bindings: bindings,
		stepper:  stepper,
		source:   source,
		ser:      views.NewSerializer(runDir, cfg.ElementPerFolder),
	}, nil
}

// RunDir returns the allocated run directory.
func (sc *SessionController) RunDir() string { return sc.ser.RunDir() }

// FramesDone returns the number of fully persisted frames.
func (sc *SessionController) FramesDone() uint64 {
	return atomic.LoadUint64(&sc.framesDone)
}

// Run executes the capture loop. Each iteration advances exactly one
// sample, pulls every bound annotator's payload for every camera, and
// persists them before the frame counter moves. Cameras within a frame
// are processed concurrently; frames never are.
//
// Cancellation is honored at frame boundaries only, so an interrupt
// leaves the run directory with whole frames and bookkeeping that never
// ran ahead of the data.
func (sc *SessionController) Run(ctx context.Context) error {
	defer func() {
		if err := sc.ser.Close(); err != nil {
			utils.L().Error("close serializer: %v", err)
		}
	}()

	stop := sc.startStatsTicker()
	defer stop()

	start := time.Now()
	for f := 0; f < sc.cfg.NumImages; f++ {
		select {
		case <-ctx.Done():
			utils.L().Info("capture interrupted after %d/%d frames", f, sc.cfg.NumImages)
			return ctx.Err()
		default:
		}

		if err := sc.stepper.Step(ctx); err != nil {
			return &CaptureAbortedError{Frame: f, LastCompleted: f - 1, Err: err}
		}

		frame := uint64(f)
		g := new(errgroup.Group)
		for i := range sc.bindings {
			b := &sc.bindings[i]
			g.Go(func() error { return sc.captureCamera(b, frame) })
		}
		if err := g.Wait(); err != nil {
			return &CaptureAbortedError{Frame: f, LastCompleted: f - 1, Err: err}
		}

		atomic.AddUint64(&sc.framesDone, 1)
	}

	utils.L().Info("capture complete  frames=%d elapsed=%s run=%s",
		sc.cfg.NumImages, time.Since(start).Round(time.Millisecond), sc.RunDir())
	return nil
}

// captureCamera persists one camera's slice of a frame: intrinsics on
// the camera's first frame, then one payload per bound annotator in
// list order.
func (sc *SessionController) captureCamera(b *models.CameraBinding, frame uint64) error {
	if frame == 0 {
		sc.exportIntrinsics(b)
	}

	for _, kind := range b.Annotators {
		p, err := sc.source.Pull(b.Name, kind, frame)
		if err != nil {
			return fmt.Errorf("pull %s/%s frame %d: %w", b.Name, kind, frame, err)
		}
		if err := sc.ser.Write(p, b); err != nil {
			return fmt.Errorf("serialize %s/%s frame %d: %w", b.Name, kind, frame, err)
		}
	}
	return nil
}

// exportIntrinsics is best-effort: intrinsics are auxiliary metadata,
// so incomplete optics or a failed write are logged, never fatal.
func (sc *SessionController) exportIntrinsics(b *models.CameraBinding) {
	rec, complete := b.Intrinsics()
	if !complete {
		utils.L().Warn("camera %s optics incomplete, writing best-effort intrinsics", b.Name)
	}
	if _, err := sc.ser.ExportIntrinsics(rec); err != nil {
		utils.L().Warn("export intrinsics for %s: %v", b.Name, err)
	}
}

// startStatsTicker logs progress and memory every 5 s until stopped.
func (sc *SessionController) startStatsTicker() (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				st := utils.ReadProcStats()
				utils.L().Info("── stats ─────  frames=%d/%d  rss=%.1fMB heap=%.1fMB sys=%.0f%%",
					sc.FramesDone(), sc.cfg.NumImages, st.RSSMB, st.HeapMB, st.SysUsedPct)
			}
		}
	}()
	return func() { close(done) }
}
