// Package persistence stores finished generation runs in SQLite.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/platesim/internal/plates"
)

// ErrRunNotFound is returned by LoadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// DB wraps a SQLite connection for run storage.
type DB struct {
	conn *sqlx.DB
}

// Run is the summary row of one stored generation run.
type Run struct {
	ID           string  `db:"id" json:"id"`
	Seed         int64   `db:"seed" json:"seed"`
	Plates       int     `db:"plates" json:"num_plates"`
	Cells        int     `db:"cells" json:"num_cells"`
	Ratio        float64 `db:"ratio" json:"ratio"`
	OceanDivisor int     `db:"ocean_divisor" json:"ocean_divisor"`
	Phase        string  `db:"phase" json:"phase"`
	Relaxations  int     `db:"relaxations" json:"relaxations"`
	Adopted      int     `db:"adopted" json:"adopted"`
	Orphans      int     `db:"orphans" json:"orphans"`
	CreatedAt    int64   `db:"created_at" json:"created_at"` // Unix seconds
}

// StoredRun is a run with its per-plate and per-cell state.
type StoredRun struct {
	Run
	PlateList []plates.Plate `json:"plates"`
	CellList  []plates.Cell  `json:"cells"`
}

type plateRow struct {
	ID       int     `db:"id"`
	SeedCell int     `db:"seed_cell"`
	Size     int     `db:"size"`
	Surface  string  `db:"surface"`
	OmegaX   float64 `db:"omega_x"`
	OmegaY   float64 `db:"omega_y"`
	OmegaZ   float64 `db:"omega_z"`
	Colour   uint32  `db:"colour"`
}

type cellRow struct {
	ID       int     `db:"id"`
	Plate    int     `db:"plate"`
	Boundary bool    `db:"boundary"`
	Surface  string  `db:"surface"`
	VX       float64 `db:"vx"`
	VY       float64 `db:"vy"`
	VZ       float64 `db:"vz"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		plates INTEGER NOT NULL,
		cells INTEGER NOT NULL,
		ratio REAL NOT NULL,
		ocean_divisor INTEGER NOT NULL,
		phase TEXT NOT NULL,
		relaxations INTEGER NOT NULL,
		adopted INTEGER NOT NULL,
		orphans INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plates (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		id INTEGER NOT NULL,
		seed_cell INTEGER NOT NULL,
		size INTEGER NOT NULL,
		surface TEXT NOT NULL,
		omega_x REAL NOT NULL,
		omega_y REAL NOT NULL,
		omega_z REAL NOT NULL,
		colour INTEGER NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS cells (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		id INTEGER NOT NULL,
		plate INTEGER NOT NULL,
		boundary INTEGER NOT NULL,
		surface TEXT NOT NULL,
		vx REAL NOT NULL,
		vy REAL NOT NULL,
		vz REAL NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// NewRun builds a run summary from a snapshot with a fresh ID.
func NewRun(snap plates.Snapshot, phase string) Run {
	return Run{
		ID:           uuid.NewString(),
		Seed:         snap.Config.Seed,
		Plates:       snap.Config.NumPlates,
		Cells:        len(snap.Cells),
		Ratio:        snap.Config.MaxSizeRatio,
		OceanDivisor: snap.Config.OceanDivisor,
		Phase:        phase,
		Relaxations:  snap.Stats.Relaxations,
		Adopted:      snap.Stats.Adopted,
		Orphans:      snap.Stats.Orphans,
		CreatedAt:    time.Now().Unix(),
	}
}

// SaveRun writes a run with every plate and cell in one transaction.
func (db *DB) SaveRun(run Run, snap plates.Snapshot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`INSERT OR REPLACE INTO runs
		(id, seed, plates, cells, ratio, ocean_divisor, phase, relaxations, adopted, orphans, created_at)
		VALUES (:id, :seed, :plates, :cells, :ratio, :ocean_divisor, :phase, :relaxations, :adopted, :orphans, :created_at)`,
		run)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, table := range []string{"plates", "cells"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE run_id = ?", run.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	plateStmt, err := tx.Preparex(`INSERT INTO plates
		(run_id, id, seed_cell, size, surface, omega_x, omega_y, omega_z, colour)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer plateStmt.Close()

	for _, p := range snap.Plates {
		w := p.AngularVelocity
		_, err := plateStmt.Exec(run.ID, p.ID, p.SeedCell, p.Size, p.Surface.String(),
			w.X(), w.Y(), w.Z(), packColour(p.Colour))
		if err != nil {
			return fmt.Errorf("insert plate %d: %w", p.ID, err)
		}
	}

	cellStmt, err := tx.Preparex(`INSERT INTO cells
		(run_id, id, plate, boundary, surface, vx, vy, vz)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer cellStmt.Close()

	for i, c := range snap.Cells {
		v := c.Velocity
		_, err := cellStmt.Exec(run.ID, i, c.Plate, c.Boundary, c.Surface.String(), v.X(), v.Y(), v.Z())
		if err != nil {
			return fmt.Errorf("insert cell %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("run saved", "id", run.ID, "plates", len(snap.Plates), "cells", len(snap.Cells))
	return nil
}

// LoadRun reads a run back. Returns ErrRunNotFound for an unknown ID.
func (db *DB) LoadRun(id string) (*StoredRun, error) {
	var run Run
	err := db.conn.Get(&run, "SELECT * FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	var prows []plateRow
	if err := db.conn.Select(&prows,
		`SELECT id, seed_cell, size, surface, omega_x, omega_y, omega_z, colour
		 FROM plates WHERE run_id = ? ORDER BY id`, id); err != nil {
		return nil, fmt.Errorf("load plates: %w", err)
	}

	var crows []cellRow
	if err := db.conn.Select(&crows,
		`SELECT id, plate, boundary, surface, vx, vy, vz
		 FROM cells WHERE run_id = ? ORDER BY id`, id); err != nil {
		return nil, fmt.Errorf("load cells: %w", err)
	}

	out := &StoredRun{
		Run:       run,
		PlateList: make([]plates.Plate, len(prows)),
		CellList:  make([]plates.Cell, len(crows)),
	}
	for i, r := range prows {
		s, err := plates.ParseSurface(r.Surface)
		if err != nil {
			return nil, fmt.Errorf("plate %d: %w", r.ID, err)
		}
		out.PlateList[i] = plates.Plate{
			ID:              r.ID,
			SeedCell:        r.SeedCell,
			Size:            r.Size,
			Surface:         s,
			AngularVelocity: mgl64.Vec3{r.OmegaX, r.OmegaY, r.OmegaZ},
			Colour:          unpackColour(r.Colour),
		}
	}
	for i, r := range crows {
		s, err := plates.ParseSurface(r.Surface)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", r.ID, err)
		}
		out.CellList[i] = plates.Cell{
			Plate:    r.Plate,
			Boundary: r.Boundary,
			Surface:  s,
			Velocity: mgl64.Vec3{r.VX, r.VY, r.VZ},
		}
	}
	return out, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	return runs, err
}

// SaveMeta stores a key-value pair in run metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

func packColour(c color.RGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

func unpackColour(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}
