// Command platesim generates a tectonic plate world headlessly, serves its
// progress over HTTP and stores the finished run.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/platesim/internal/api"
	"github.com/talgya/platesim/internal/config"
	"github.com/talgya/platesim/internal/engine"
	"github.com/talgya/platesim/internal/persistence"
	"github.com/talgya/platesim/internal/plates"
	"github.com/talgya/platesim/internal/sphere"
)

func main() {
	settings, err := config.FromEnv()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: settings.LogLevel,
	}))
	slog.SetDefault(logger)
	if err != nil {
		slog.Error("bad configuration", "error", err)
		os.Exit(1)
	}
	settings.ResolveSeed()

	// ── Cell graph and world ──────────────────────────────────────────
	graph, err := sphere.Icosphere(settings.Subdivisions)
	if err != nil {
		slog.Error("failed to build icosphere", "error", err)
		os.Exit(1)
	}
	world, err := plates.NewWorld(graph, settings.Plates)
	if err != nil {
		slog.Error("failed to create world", "error", err)
		os.Exit(1)
	}
	slog.Info("world ready",
		"cells", humanize.Comma(int64(graph.NumCells())),
		"plates", settings.Plates.NumPlates,
		"seed", settings.Plates.Seed,
	)

	// ── Run store ─────────────────────────────────────────────────────
	var db *persistence.DB
	if settings.DBPath != "" {
		os.MkdirAll(filepath.Dir(settings.DBPath), 0755)
		db, err = persistence.Open(settings.DBPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database opened", "path", settings.DBPath)
	} else {
		slog.Warn("PLATESIM_DB empty, runs will not be stored")
	}

	// ── Controller and engine ────────────────────────────────────────
	ctrl := engine.NewController(world)
	hub := api.NewHub(ctrl)
	eng := engine.NewEngine()
	eng.Interval = settings.TickInterval
	eng.OnTick = func(uint64) { ctrl.Tick() }

	ctrl.OnPhaseChange = hub.Publish
	if settings.AutoConfirm {
		ctrl.OnPhaseChange = ctrl.AutoConfirm(hub.Publish)
		slog.Info("auto-confirm enabled")
	}

	var saveOnce sync.Once
	save := func() {
		saveOnce.Do(func() { saveRun(db, ctrl) })
	}
	ctrl.OnFinished = func() {
		save()
		// Nothing left to generate; keep serving reads.
		eng.SetSpeed(0)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if settings.AdminKey == "" {
		slog.Warn("PLATESIM_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Ctrl:     ctrl,
		Eng:      eng,
		DB:       db,
		Hub:      hub,
		Port:     settings.Port,
		AdminKey: settings.AdminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nGenerating %d plates over %s cells (seed %d).\n",
		settings.Plates.NumPlates, humanize.Comma(int64(graph.NumCells())), settings.Plates.Seed)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", settings.Port)
	if !settings.AutoConfirm {
		fmt.Println("Confirm each stage with POST /api/v1/confirm (or set PLATESIM_AUTO_CONFIRM=1).")
	}
	fmt.Println("Running... (Ctrl+C to stop)")

	eng.Run(ctx)

	// Store whatever exists on shutdown if the run never finished.
	if ctrl.Phase() > engine.PhaseGenPlates {
		save()
	}
	fmt.Println("Generation stopped.")
}

// saveRun stores the current world and records it as the last run.
func saveRun(db *persistence.DB, ctrl *engine.Controller) {
	snap := ctrl.World().Snapshot()
	oceans := 0
	for _, p := range snap.Plates {
		if p.Surface == plates.SurfaceOcean {
			oceans++
		}
	}
	fmt.Printf("\n%s cells across %d plates (%d ocean) after %s ticks; %d relaxations, %d adopted, %d orphans.\n",
		humanize.Comma(int64(len(snap.Cells))), len(snap.Plates), oceans,
		humanize.Comma(int64(ctrl.Ticks())), snap.Stats.Relaxations, snap.Stats.Adopted, snap.Stats.Orphans)

	if db == nil {
		return
	}
	run := persistence.NewRun(snap, ctrl.Phase().String())
	if err := db.SaveRun(run, snap); err != nil {
		slog.Error("run save failed", "error", err)
		return
	}
	if err := db.SaveMeta("last_run", run.ID); err != nil {
		slog.Error("meta save failed", "error", err)
	}
	fmt.Printf("Run stored as %s.\n", run.ID)
}
