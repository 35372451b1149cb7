// Package store records simulation runs in SQLite: one row per run with its
// final metrics, and one row per message that reached a top-level output port.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdevs-sim/pdevs-sim/sim"

	_ "modernc.org/sqlite"
)

// Store manages the run database. WAL mode lets a plot or list command read
// while a run is still writing.
type Store struct {
	db *sql.DB
}

// timeFormat keeps a fixed-width fraction so timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Open opens (or creates) the SQLite database at path and initializes the schema.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id              TEXT PRIMARY KEY,
		network         TEXT NOT NULL,
		start_tick      INTEGER NOT NULL,
		stop_tick       INTEGER NOT NULL,
		started_at      TEXT NOT NULL,
		finished_at     TEXT,
		end_tick        INTEGER,
		cycles          INTEGER NOT NULL DEFAULT 0,
		transitions     INTEGER NOT NULL DEFAULT 0,
		delivered       INTEGER NOT NULL DEFAULT 0,
		dropped         INTEGER NOT NULL DEFAULT 0,
		stimulus_errors INTEGER NOT NULL DEFAULT 0,
		sink_errors     INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS outputs (
		id     INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick   INTEGER NOT NULL,
		port   TEXT NOT NULL,
		value  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_outputs_run_port ON outputs(run_id, port, tick);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RunInfo describes one recorded run.
type RunInfo struct {
	ID             string
	Network        string
	Start          sim.Time
	Stop           sim.Time
	StartedAt      time.Time
	FinishedAt     *time.Time // nil while the run is in progress or if it crashed
	EndTick        sim.Time
	Cycles         int
	Transitions    int
	Delivered      int
	Dropped        int
	StimulusErrors int
	SinkErrors     int
}

// Output is one message recorded on a top-level output port.
type Output struct {
	Tick  sim.Time
	Port  string
	Value json.RawMessage
}

// Float returns the value as a number for plotting: numbers as is, booleans
// as 0 or 1. ok is false for any other JSON value.
func (o Output) Float() (v float64, ok bool) {
	var x any
	if err := json.Unmarshal(o.Value, &x); err != nil {
		return 0, false
	}
	switch t := x.(type) {
	case float64:
		return t, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// BeginRun registers a new run and returns its recorder.
func (s *Store) BeginRun(network string, start, stop sim.Time) (*Run, error) {
	id := uuid.Must(uuid.NewV7()).String()
	now := time.Now().UTC().Format(timeFormat)
	err := retryOnContention(func() error {
		_, err := s.db.Exec(
			`INSERT INTO runs (id, network, start_tick, stop_tick, started_at) VALUES (?, ?, ?, ?, ?)`,
			id, network, int64(start), int64(stop), now,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	return &Run{store: s, ID: id}, nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*RunInfo, error) {
	row := s.db.QueryRow(runColumns+` WHERE id = ?`, id)
	ri, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return ri, err
}

// ListRuns returns every run, oldest first. Run IDs are UUIDv7 and sort by
// creation time.
func (s *Store) ListRuns() ([]RunInfo, error) {
	rows, err := s.db.Query(runColumns + ` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		ri, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ri)
	}
	return out, rows.Err()
}

// Outputs returns the messages recorded for port in run, in emission order.
// An empty port returns every port.
func (s *Store) Outputs(runID, port string) ([]Output, error) {
	query := `SELECT tick, port, value FROM outputs WHERE run_id = ?`
	args := []any{runID}
	if port != "" {
		query += ` AND port = ?`
		args = append(args, port)
	}
	rows, err := s.db.Query(query+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Output
	for rows.Next() {
		var o Output
		var tick int64
		var value string
		if err := rows.Scan(&tick, &o.Port, &value); err != nil {
			return nil, err
		}
		o.Tick = sim.Time(tick)
		o.Value = json.RawMessage(value)
		out = append(out, o)
	}
	return out, rows.Err()
}

// Ports returns the distinct output ports recorded for run, sorted.
func (s *Store) Ports(runID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT port FROM outputs WHERE run_id = ? ORDER BY port`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const runColumns = `SELECT id, network, start_tick, stop_tick, started_at, finished_at, end_tick,
	cycles, transitions, delivered, dropped, stimulus_errors, sink_errors FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunInfo, error) {
	var ri RunInfo
	var start, stop int64
	var startedAt string
	var finishedAt sql.NullString
	var endTick sql.NullInt64
	err := row.Scan(&ri.ID, &ri.Network, &start, &stop, &startedAt, &finishedAt, &endTick,
		&ri.Cycles, &ri.Transitions, &ri.Delivered, &ri.Dropped, &ri.StimulusErrors, &ri.SinkErrors)
	if err != nil {
		return nil, err
	}
	ri.Start, ri.Stop = sim.Time(start), sim.Time(stop)
	ri.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	if finishedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, finishedAt.String)
		ri.FinishedAt = &t
	}
	if endTick.Valid {
		ri.EndTick = sim.Time(endTick.Int64)
	}
	return &ri, nil
}
