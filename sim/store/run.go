package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pdevs-sim/pdevs-sim/sim"
)

// Run records the top-level output of one simulation. It implements sim.Sink.
type Run struct {
	store *Store
	ID    string
}

// Emit stores every message of out in one transaction. Values are stored
// as JSON.
func (r *Run) Emit(t sim.Time, out sim.Bag) error {
	type row struct {
		port  string
		value string
	}
	var rows []row
	for _, port := range out.PortNames() {
		for _, v := range out[port] {
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encoding %s value %v: %w", port, v, err)
			}
			rows = append(rows, row{port: port, value: string(data)})
		}
	}
	if len(rows) == 0 {
		return nil
	}

	return retryOnContention(func() error {
		tx, err := r.store.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		stmt, err := tx.Prepare(`INSERT INTO outputs (run_id, tick, port, value) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, rw := range rows {
			if _, err := stmt.Exec(r.ID, int64(t), rw.port, rw.value); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// Finish stores the run's final metrics and marks it complete.
func (r *Run) Finish(m *sim.Metrics) error {
	now := time.Now().UTC().Format(timeFormat)
	return retryOnContention(func() error {
		_, err := r.store.db.Exec(
			`UPDATE runs SET finished_at = ?, end_tick = ?, cycles = ?, transitions = ?,
			 delivered = ?, dropped = ?, stimulus_errors = ?, sink_errors = ? WHERE id = ?`,
			now, int64(m.SimEndedTime), m.Cycles, m.TotalTransitions(),
			m.MessagesDelivered, m.MessagesDropped, m.StimulusErrors, m.SinkErrors, r.ID,
		)
		return err
	})
}
