package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"sdg-runner/controller"
	"sdg-runner/services/sim"
	"sdg-runner/utils"
)

func main() {
	// ── CLI flags ────────────────────────────────────────────────────
	configPath := flag.String("config", "config/run.yaml", "path to run.yaml")
	dataDir := flag.String("data-dir", "", "override sdg data_dir")
	numImages := flag.Int("images", 0, "override sdg num_images")
	logFile := flag.String("log", "", "optional log file path (stdout is always included)")
	flag.Parse()

	// ── Logger ───────────────────────────────────────────────────────
	logger := utils.InitLogger(utils.INFO, *logFile)
	defer logger.Close()

	utils.L().Info("═══════════════════════════════════════════════════")
	utils.L().Info("  SDG-Runner  ·  Synthetic Dataset Capture")
	utils.L().Info("  GOMAXPROCS=%d  ·  PID=%d", runtime.GOMAXPROCS(0), os.Getpid())
	utils.L().Info("═══════════════════════════════════════════════════")

	// ── Load config ──────────────────────────────────────────────────
	cfg, err := utils.LoadRunConfig(*configPath)
	if err != nil {
		utils.L().Fatal("load run config: %v", err)
	}
	if *dataDir != "" {
		cfg.SDG.DataDir = *dataDir
	}
	if *numImages > 0 {
		cfg.SDG.NumImages = *numImages
	}

	// Resolve relative data_dir to absolute.
	if cfg.SDG.DataDir != "" && !filepath.IsAbs(cfg.SDG.DataDir) {
		abs, _ := filepath.Abs(cfg.SDG.DataDir)
		cfg.SDG.DataDir = abs
	}

	// ── Mode dispatch (resolved once) ────────────────────────────────
	switch cfg.ModeKind() {
	case utils.ModeROS1:
		utils.L().Info("mode=ros1  bridge=%s — message transport is the external bridge's job, nothing to run here", cfg.ROS1.BridgeName)
		return
	case utils.ModeROS2:
		utils.L().Info("mode=ros2  domain_id=%d (recorded, not functional) — nothing to run here", cfg.ROS2.DomainID)
		return
	case utils.ModeSDG:
		// fall through to the session below
	}

	// ── Context with OS signal cancellation ──────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		utils.L().Info("received signal: %v — stopping at the next frame boundary", sig)
		cancel()
	}()

	// ── Collaborators ────────────────────────────────────────────────
	// A renderer-backed scene/stepper would be wired here; the synthetic
	// rig is the only in-process collaborator.
	if !cfg.Simulation.Enabled {
		utils.L().Fatal("no external simulation collaborator configured; enable simulation to use the synthetic rig")
	}
	sceneGraph := sim.NewSyntheticScene(cfg.SDG.PrimPath, cfg.SDG.CameraNames, cfg.SDG.CameraSettings)

	// ── Session assembly ─────────────────────────────────────────────
	//
	//  camera resolver ──► bindings ──► capture loop ──► serializer
	//                                        │
	//                              run dir + shards + pose tables

	bindings, err := controller.BuildBindings(&cfg.SDG, sceneGraph)
	if err != nil {
		utils.L().Fatal("build bindings: %v", err)
	}

	rig := sim.NewSyntheticRig(bindings)
	sess, err := controller.NewSessionController(&cfg.SDG, bindings, rig, rig)
	if err != nil {
		utils.L().Fatal("init session: %v", err)
	}

	if err := sess.Run(ctx); err != nil {
		var abort *controller.CaptureAbortedError
		switch {
		case errors.As(err, &abort):
			utils.L().Fatal("capture aborted: %v (partial output kept at %s)", abort, sess.RunDir())
		case errors.Is(err, context.Canceled):
			utils.L().Info("run stopped by operator  frames=%d  output=%s", sess.FramesDone(), sess.RunDir())
			return
		default:
			utils.L().Fatal("run failed: %v", err)
		}
	}

	fmt.Println("\n✓ SDG run finished. Dataset at:", sess.RunDir())
}
