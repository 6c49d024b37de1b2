// Package config reads command settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/platesim/internal/engine"
	"github.com/talgya/platesim/internal/entropy"
	"github.com/talgya/platesim/internal/plates"
	"github.com/talgya/platesim/internal/sphere"
)

// Settings is everything a command needs to start a run.
type Settings struct {
	Plates       plates.Config
	Subdivisions int           // Icosphere level
	TickInterval time.Duration // Engine tick interval
	DBPath       string        // Empty disables the run store
	Port         int
	AdminKey     string
	AutoConfirm  bool
	RandomOrgKey string
	LogLevel     slog.Level
}

// Default returns the settings used when no variables are set.
func Default() Settings {
	return Settings{
		Plates:       plates.DefaultConfig(),
		Subdivisions: 5,
		TickInterval: engine.DefaultInterval,
		DBPath:       "data/platesim.db",
		Port:         8080,
		LogLevel:     slog.LevelInfo,
	}
}

// FromEnv reads settings from the process environment.
func FromEnv() (Settings, error) {
	return Load(os.LookupEnv)
}

// Load reads settings through lookup, starting from Default.
func Load(lookup func(string) (string, bool)) (Settings, error) {
	s := Default()
	r := reader{lookup: lookup}

	s.Plates.Seed = r.int64("PLATESIM_SEED", s.Plates.Seed)
	s.Plates.NumPlates = r.int("PLATESIM_PLATES", s.Plates.NumPlates)
	s.Plates.MaxSizeRatio = r.float("PLATESIM_RATIO", s.Plates.MaxSizeRatio)
	s.Plates.CellsPerTick = r.int("PLATESIM_CELLS_PER_TICK", s.Plates.CellsPerTick)
	s.Subdivisions = r.int("PLATESIM_SUBDIVISIONS", s.Subdivisions)
	if ms := r.int("PLATESIM_TICK_MS", -1); ms >= 0 {
		s.TickInterval = time.Duration(ms) * time.Millisecond
	}
	if v, ok := lookup("PLATESIM_DB"); ok {
		s.DBPath = v
	}
	s.Port = r.int("PLATESIM_PORT", s.Port)
	s.AdminKey = r.string("PLATESIM_ADMIN_KEY", "")
	s.AutoConfirm = r.bool("PLATESIM_AUTO_CONFIRM", false)
	s.RandomOrgKey = r.string("RANDOM_ORG_API_KEY", "")
	if v, ok := lookup("PLATESIM_LOG_LEVEL"); ok && v != "" {
		if err := s.LogLevel.UnmarshalText([]byte(v)); err != nil {
			r.fail("PLATESIM_LOG_LEVEL", v)
		}
	}

	if r.err != nil {
		return s, r.err
	}
	return s, s.Validate()
}

// Validate checks fields that the plates config does not cover.
func (s Settings) Validate() error {
	if err := s.Plates.Validate(); err != nil {
		return err
	}
	switch {
	case s.Subdivisions < 0 || s.Subdivisions > sphere.MaxLevel:
		return fmt.Errorf("%w: PLATESIM_SUBDIVISIONS %d outside [0, %d]", plates.ErrInvalidConfig, s.Subdivisions, sphere.MaxLevel)
	case s.Port < 0 || s.Port > 65535:
		return fmt.Errorf("%w: PLATESIM_PORT %d", plates.ErrInvalidConfig, s.Port)
	}
	return nil
}

// ResolveSeed fills in a zero seed from random.org or crypto/rand.
func (s *Settings) ResolveSeed() {
	if s.Plates.Seed != 0 {
		return
	}
	client := entropy.NewClient(s.RandomOrgKey)
	s.Plates.Seed = client.Seed()
	slog.Info("seed drawn", "seed", s.Plates.Seed, "random_org", client.Enabled())
}

// reader records the first malformed variable.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) fail(key, v string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s=%q", plates.ErrInvalidConfig, key, v)
	}
}

func (r *reader) string(key, def string) string {
	if v, ok := r.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := r.string(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v)
		return def
	}
	return n
}

func (r *reader) int64(key string, def int64) int64 {
	v := r.string(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		r.fail(key, v)
		return def
	}
	return n
}

func (r *reader) float(key string, def float64) float64 {
	v := r.string(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, v)
		return def
	}
	return f
}

func (r *reader) bool(key string, def bool) bool {
	v := strings.ToLower(r.string(key, ""))
	switch v {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	r.fail(key, v)
	return def
}
