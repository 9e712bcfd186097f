// Command scenecast renders a YAML screenplay into an MP4: synthesized
// speech, character/background/subtitle overlays, and a muxed final cut.
//
// It parses flags, loads and validates the screenplay, runs system
// diagnostics, and drives the render pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scenecast/scenecast/internal/check"
	"github.com/scenecast/scenecast/internal/config"
	"github.com/scenecast/scenecast/internal/display"
	"github.com/scenecast/scenecast/internal/logging"
	"github.com/scenecast/scenecast/internal/orchestrator"
)

// version and commit are injected at build time via -ldflags. When built
// with plain "go build" (no make), these retain their defaults.
var (
	version = "0.1.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap — the logger doesn't exist yet, so errors go
	// directly to stderr via fmt. Once NewLogger succeeds, all output
	// goes through the logger for consistent formatting and log-file capture.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "scenecast: %v\n", err)
		return 1
	}

	if err := config.Load(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "scenecast: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scenecast: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available — all output goes through log from here on.
	display.PrintBanner()
	log.Info("=== scenecast v%s (%s) ===", version, commit)
	log.Info("Script: %s", cfg.ScriptPath)
	log.Info("Output: %s", cfg.OutputPath)

	check.Run(&cfg, log)

	// Phase 3: Signal handling — cancel context on SIGINT/SIGTERM so the
	// pipeline can stop between scenes without leaving a partial output.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, finishing current scene…")
		cancel()
	}()

	// Phase 4: Run the pipeline (Audio Phase -> Video Phase -> Finalize).
	orch := orchestrator.New(&cfg, log)
	result, err := orch.Run(ctx)
	if err != nil {
		log.Error("%v", err)
		return 1
	}

	log.Success("Rendered %d scene(s) -> %s (%.2fs)", result.ScenesMuxed, result.OutputPath, result.Duration)
	for _, p := range result.TimelinePaths {
		log.Info("Timeline: %s", p)
	}
	for _, p := range result.SubtitlePaths {
		log.Info("Subtitles: %s", p)
	}
	if result.VoiceReport != "" {
		log.Info("Voice usage report: %s", result.VoiceReport)
	}

	return 0
}
