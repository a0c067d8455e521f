/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"prairiedraw/internal/history"
)

// ErrRunNotFound is returned when a run id is not in the archive.
var ErrRunNotFound = errors.New("storage: run not found")

// Run is one archived animation session.
type Run struct {
	ID        uuid.UUID
	Scene     string
	StartedAt time.Time
	Note      string
}

// BeginRun registers a new run for scene and returns its id.
func (a *Archive) BeginRun(ctx context.Context, scene, note string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := a.db.ExecContext(ctx, a.q(`INSERT INTO runs (id, scene, started_at, note) VALUES(?, ?, ?, ?)`),
		id.String(), scene, a.stamp(), note)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

func (a *Archive) runExists(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, run uuid.UUID) error {
	var one int
	err := q.QueryRowContext(ctx, a.q(`SELECT 1 FROM runs WHERE id=?`), run.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run)
	}
	return err
}

// SaveTrace replaces the samples stored under (run, name).
func (a *Archive) SaveTrace(ctx context.Context, run uuid.UUID, name string, samples []history.Sample) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	if err := a.saveTrace(ctx, tx, run, name, samples); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (a *Archive) saveTrace(ctx context.Context, tx *sql.Tx, run uuid.UUID, name string, samples []history.Sample) error {
	if err := a.runExists(ctx, tx, run); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, a.q(`DELETE FROM samples WHERE run_id=? AND name=?`), run.String(), name); err != nil {
		return fmt.Errorf("clear trace %s: %w", name, err)
	}
	stmt, err := tx.PrepareContext(ctx, a.q(`INSERT INTO samples (run_id, name, seq, t, v) VALUES(?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, s := range samples {
		v, err := json.Marshal(s.V)
		if err != nil {
			return fmt.Errorf("encode sample: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, run.String(), name, i, s.T, string(v)); err != nil {
			return fmt.Errorf("insert sample %s[%d]: %w", name, i, err)
		}
	}
	return nil
}

// SaveStore archives every series in st under run in one transaction.
func (a *Archive) SaveStore(ctx context.Context, run uuid.UUID, st *history.Store) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	names := st.Names()
	for _, name := range names {
		if err := a.saveTrace(ctx, tx, run, name, st.Get(name)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit traces: %w", err)
	}
	a.log.Debug("traces archived", slog.String("run", run.String()), slog.Int("series", len(names)))
	return nil
}

// LoadTrace returns the samples of (run, name) in recording order.
func (a *Archive) LoadTrace(ctx context.Context, run uuid.UUID, name string) ([]history.Sample, error) {
	if err := a.runExists(ctx, a.db, run); err != nil {
		return nil, err
	}
	rows, err := a.db.QueryContext(ctx, a.q(`SELECT t, v FROM samples WHERE run_id=? AND name=? ORDER BY seq`), run.String(), name)
	if err != nil {
		return nil, fmt.Errorf("query trace: %w", err)
	}
	defer rows.Close()
	var out []history.Sample
	for rows.Next() {
		var (
			s   history.Sample
			raw string
		)
		if err := rows.Scan(&s.T, &raw); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &s.V); err != nil {
			return nil, fmt.Errorf("decode sample: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// TraceNames lists the series archived for run.
func (a *Archive) TraceNames(ctx context.Context, run uuid.UUID) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, a.q(`SELECT DISTINCT name FROM samples WHERE run_id=? ORDER BY name`), run.String())
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Runs lists runs newest first. An empty scene lists all scenes.
func (a *Archive) Runs(ctx context.Context, scene string) ([]Run, error) {
	query := `SELECT id, scene, started_at, note FROM runs`
	var args []any
	if scene != "" {
		query += ` WHERE scene=?`
		args = append(args, scene)
	}
	query += ` ORDER BY started_at DESC, id`
	rows, err := a.db.QueryContext(ctx, a.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var (
			r      Run
			id, ts string
		)
		if err := rows.Scan(&id, &r.Scene, &ts, &r.Note); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its samples.
func (a *Archive) DeleteRun(ctx context.Context, run uuid.UUID) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, a.q(`DELETE FROM samples WHERE run_id=?`), run.String()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete samples: %w", err)
	}
	res, err := tx.ExecContext(ctx, a.q(`DELETE FROM runs WHERE id=?`), run.String())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %s", ErrRunNotFound, run)
	}
	return tx.Commit()
}

// Restore loads every archived series of run into st, replacing same-named series.
func (a *Archive) Restore(ctx context.Context, run uuid.UUID, st *history.Store) error {
	names, err := a.TraceNames(ctx, run)
	if err != nil {
		return err
	}
	for _, name := range names {
		samples, err := a.LoadTrace(ctx, run, name)
		if err != nil {
			return err
		}
		st.Clear(name)
		for _, s := range samples {
			// minDt 0 and an infinite window keep every sample verbatim.
			st.Record(name, 0, math.Inf(1), s.T, s.V...)
		}
	}
	return nil
}
