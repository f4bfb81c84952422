package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RecordRun stores a finished run with its table outcomes in one
// transaction. An empty run.ID is filled with a new UUID.
func (s *SQLiteStore) RecordRun(ctx context.Context, run *Run, tables []TableRun) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	s.logger.Debug("recording run", slog.String("id", run.ID), slog.String("kind", string(run.Kind)), slog.Int("tables", len(tables)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, model, target, status, started_at, completed_at, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.Model, run.Target, string(run.Status),
		run.StartedAt.UTC(), nullTime(run.CompletedAt), nullString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO table_runs (run_id, table_name, status, queries, columns, duration_ms, error) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, tr := range tables {
		if _, err := stmt.ExecContext(ctx, run.ID, tr.Table, string(tr.Status), tr.Queries, tr.Columns,
			tr.Duration.Milliseconds(), nullString(tr.Error)); err != nil {
			return fmt.Errorf("failed to record table %s: %w", tr.Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, model, target, status, started_at, completed_at, error FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, model, target, status, started_at, completed_at, error FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetTableRuns returns the table outcomes of a run in table name order.
func (s *SQLiteStore) GetTableRuns(ctx context.Context, runID string) ([]TableRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT table_name, status, queries, columns, duration_ms, error FROM table_runs WHERE run_id = ? ORDER BY table_name`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get table runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []TableRun
	for rows.Next() {
		tr := TableRun{RunID: runID}
		var status string
		var durationMS int64
		var errMsg sql.NullString
		if err := rows.Scan(&tr.Table, &status, &tr.Queries, &tr.Columns, &durationMS, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan table run: %w", err)
		}
		tr.Status = TableStatus(status)
		tr.Duration = time.Duration(durationMS) * time.Millisecond
		tr.Error = errMsg.String
		out = append(out, tr)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	run := &Run{}
	var kind, status string
	var completedAt sql.NullTime
	var errMsg sql.NullString

	if err := row.Scan(&run.ID, &kind, &run.Model, &run.Target, &status, &run.StartedAt, &completedAt, &errMsg); err != nil {
		return nil, err
	}
	run.Kind = RunKind(kind)
	run.Status = RunStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	run.Error = errMsg.String
	return run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
