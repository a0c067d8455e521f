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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	applog "prairiedraw/internal/log"
	"prairiedraw/internal/version"

	// Postgres via database/sql
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// schemaVersion tracks the archive schema. Bump it and add a step to
// runMigrations for breaking changes.
const schemaVersion = 2

// ErrUnknownDriver is returned by Open for anything but sqlite or postgres.
var ErrUnknownDriver = errors.New("storage: unknown driver")

// Archive is an open trace archive. It is safe for concurrent use.
type Archive struct {
	db      *sql.DB
	driver  string
	log     *slog.Logger
	nowFunc func() time.Time
}

// Open connects to the archive and ensures the schema is current. For sqlite
// the dsn is a file path whose directory is created if needed.
func Open(ctx context.Context, driver, dsn string) (*Archive, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("driver", driver))
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("storage: dsn is required")
	}
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(ctx, dsn)
	case DriverPostgres:
		db, err = sql.Open("pgx", dsn)
		if err == nil {
			pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err = db.PingContext(pctx)
			cancel()
			if err != nil {
				_ = db.Close()
				err = fmt.Errorf("ping postgres: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		return nil, err
	}
	a := &Archive{db: db, driver: driver, log: applog.WithComponent("storage"), nowFunc: time.Now}
	if err := a.ensureSchema(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("archive ready")
	return a, nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Set reasonable connection pool limits for embedded usage.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool.
func (a *Archive) Close() error { return a.db.Close() }

// Driver reports which backend the archive uses.
func (a *Archive) Driver() string { return a.driver }

// q rewrites ? placeholders to $n for postgres.
func (a *Archive) q(query string) string {
	if a.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (a *Archive) stamp() string { return a.nowFunc().UTC().Format(time.RFC3339Nano) }

func (a *Archive) ensureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			scene      TEXT NOT NULL,
			started_at TEXT NOT NULL,
			note       TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS samples (
			run_id TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name   TEXT    NOT NULL,
			seq    INTEGER NOT NULL,
			t      DOUBLE PRECISION NOT NULL,
			v      TEXT    NOT NULL,
			PRIMARY KEY(run_id, name, seq)
		);`,
	}
	for _, stmt := range ddl {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := a.stamp()
	var cur int
	err := a.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// A fresh archive starts at schema 1 and migrates forward.
		if _, err := a.db.ExecContext(ctx, a.q(`INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`), version.Version, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := a.db.ExecContext(ctx, a.q(`UPDATE version SET app=?, updated_at=? WHERE id=1`), version.Version, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return a.runMigrations(ctx)
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func (a *Archive) runMigrations(ctx context.Context) error {
	var cur int
	if err := a.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`CREATE INDEX IF NOT EXISTS idx_runs_scene ON runs(scene, started_at);`,
				`CREATE INDEX IF NOT EXISTS idx_samples_name ON samples(run_id, name, t);`,
			}
		}
		tx, err := a.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, a.q(`UPDATE version SET schema=?, updated_at=? WHERE id=1`), next, a.stamp()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		a.log.Debug("migrated", slog.Int("schema", next))
		cur = next
	}
	return nil
}

// SchemaVersion returns the schema recorded in the archive.
func (a *Archive) SchemaVersion(ctx context.Context) (int, error) {
	var cur int
	err := a.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	return cur, err
}
