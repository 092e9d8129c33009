// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package audit provides a Postgres-backed operational log of reminder
// runs and ingestion outcomes. The CRM remains the system of record for
// the emails themselves; the audit store only answers "what did the
// automation do and when".
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Run summarises one reminder workflow pass.
type Run struct {
	ID         int64
	RunID      string
	Candidates int
	Stale      int
	Sent       bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// Ingestion outcome values.
const (
	OutcomeArchived      = "archived"
	OutcomeDuplicate     = "duplicate"
	OutcomeSkipped       = "skipped" // archival administratively disabled
	OutcomeParseFailed   = "parse_failed"
	OutcomeArchiveFailed = "archive_failed"
)

// Ingestion records the outcome of a single ingestion request.
type Ingestion struct {
	ID          int64
	RequestID   string
	Fingerprint string
	FromAddress string
	Subject     string
	Outcome     string
	ReceivedAt  time.Time
}

// Store writes audit rows to Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates an audit store backed by the given Postgres pool.
// It ensures the audit tables exist on creation.
func NewStore(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure audit schema: %w", err)
	}
	slog.Info("audit store initialised")
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS reminder_runs (
			id          BIGSERIAL PRIMARY KEY,
			run_id      TEXT NOT NULL UNIQUE,
			candidates  INT NOT NULL,
			stale       INT NOT NULL,
			sent        BOOLEAN NOT NULL,
			started_at  TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS ingestions (
			id          BIGSERIAL PRIMARY KEY,
			request_id  TEXT NOT NULL,
			fingerprint TEXT DEFAULT '',
			from_addr   TEXT DEFAULT '',
			subject     TEXT DEFAULT '',
			outcome     TEXT NOT NULL,
			received_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON reminder_runs(started_at);
		CREATE INDEX IF NOT EXISTS idx_ingestions_fingerprint ON ingestions(fingerprint);
		CREATE INDEX IF NOT EXISTS idx_ingestions_received ON ingestions(received_at);
	`)
	return err
}

// RecordRun inserts a reminder-run summary row.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reminder_runs (run_id, candidates, stale, sent, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.RunID, r.Candidates, r.Stale, r.Sent, r.StartedAt, r.FinishedAt)
	return err
}

// RecordIngestion inserts an ingestion outcome row.
func (s *Store) RecordIngestion(ctx context.Context, i Ingestion) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ingestions (request_id, fingerprint, from_addr, subject, outcome)
		VALUES ($1, $2, $3, $4, $5)
	`, i.RequestID, i.Fingerprint, i.FromAddress, i.Subject, i.Outcome)
	return err
}
