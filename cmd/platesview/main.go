//go:build ebiten

// Command platesview shows plate generation in a window. Space confirms each
// stage, R regenerates continents, C copies a run summary.
package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/talgya/platesim/internal/api"
	"github.com/talgya/platesim/internal/config"
	"github.com/talgya/platesim/internal/engine"
	"github.com/talgya/platesim/internal/persistence"
	"github.com/talgya/platesim/internal/plates"
	"github.com/talgya/platesim/internal/sphere"
	"github.com/talgya/platesim/internal/viewer"
)

const (
	mapWidth  = 1280
	mapHeight = 640
)

func main() {
	settings, err := config.FromEnv()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: settings.LogLevel,
	})))
	if err != nil {
		slog.Error("bad configuration", "error", err)
		os.Exit(1)
	}
	settings.ResolveSeed()

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
	ctrl := engine.NewController(world)

	var db *persistence.DB
	if settings.DBPath != "" {
		os.MkdirAll(filepath.Dir(settings.DBPath), 0755)
		if db, err = persistence.Open(settings.DBPath); err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	// The window drives ticks; the API observes and relays signals.
	hub := api.NewHub(ctrl)
	ctrl.OnPhaseChange = hub.Publish
	if settings.AutoConfirm {
		ctrl.OnPhaseChange = ctrl.AutoConfirm(hub.Publish)
	}
	ctrl.OnFinished = func() {
		if db == nil {
			return
		}
		snap := world.Snapshot()
		run := persistence.NewRun(snap, engine.PhaseFinished.String())
		if err := db.SaveRun(run, snap); err != nil {
			slog.Error("run save failed", "error", err)
			return
		}
		if err := db.SaveMeta("last_run", run.ID); err != nil {
			slog.Error("meta save failed", "error", err)
		}
	}
	(&api.Server{Ctrl: ctrl, DB: db, Hub: hub, Port: settings.Port, AdminKey: settings.AdminKey}).Start()

	game := viewer.New(ctrl, mapWidth, mapHeight)

	ebiten.SetWindowTitle("platesim")
	ebiten.SetTPS(int(time.Second / engine.DefaultInterval))
	ebiten.SetWindowSize(mapWidth, mapHeight)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		slog.Error("viewer exited", "error", err)
		os.Exit(1)
	}
}
