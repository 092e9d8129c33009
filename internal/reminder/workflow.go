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

// Package reminder orchestrates the stale-record reminder workflow:
// gather candidates, filter by activity history, compose the digest,
// submit it.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crmops/espoflow/internal/audit"
	"github.com/crmops/espoflow/internal/digest"
	"github.com/crmops/espoflow/internal/models"
	"github.com/crmops/espoflow/internal/staleness"
)

// Subject is the fixed reminder email subject.
const Subject = "Reminder - CRM"

// Lister gathers reminder candidates from the CRM, each list already
// ascending by modification time.
type Lister interface {
	ListStaleLeads(ctx context.Context, olderThanDays int) ([]models.Person, error)
	ListStaleContacts(ctx context.Context, olderThanDays int) ([]models.Person, error)
}

// Sender submits a composed reminder email.
type Sender interface {
	Send(ctx context.Context, subject, body string) error
}

// Workflow runs one reminder pass.
type Workflow struct {
	lister    Lister
	evaluator *staleness.Evaluator
	sender    Sender
	store     *audit.Store // nil when Postgres is not configured
	baseURL   string
	days      int
	send      bool // false = dry run, digest logged but not transmitted
}

// Config holds workflow dependencies and settings.
type Config struct {
	Lister    Lister
	Evaluator *staleness.Evaluator
	Sender    Sender
	Store     *audit.Store
	BaseURL   string
	Days      int
	Send      bool
}

// New creates a reminder workflow.
func New(cfg Config) *Workflow {
	return &Workflow{
		lister:    cfg.Lister,
		evaluator: cfg.Evaluator,
		sender:    cfg.Sender,
		store:     cfg.Store,
		baseURL:   cfg.BaseURL,
		days:      cfg.Days,
		send:      cfg.Send,
	}
}

// Run executes one reminder pass. Any transport or schema failure during
// candidate gathering or activity lookup aborts the run without sending a
// partial digest. A failure during the send step is logged but does not
// fail the run — the digest itself was already correctly computed.
func (w *Workflow) Run(ctx context.Context) error {
	runID := uuid.New().String()
	started := time.Now().UTC()

	slog.Info("starting reminder run", "run_id", runID, "threshold_days", w.days)

	leads, err := w.lister.ListStaleLeads(ctx, w.days)
	if err != nil {
		return fmt.Errorf("gather stale leads: %w", err)
	}
	contacts, err := w.lister.ListStaleContacts(ctx, w.days)
	if err != nil {
		return fmt.Errorf("gather stale contacts: %w", err)
	}

	// Leads first, then contacts — each already ascending by modifiedAt.
	candidates := make([]models.Person, 0, len(leads)+len(contacts))
	candidates = append(candidates, leads...)
	candidates = append(candidates, contacts...)

	stale, err := w.evaluator.FilterStale(ctx, candidates)
	if err != nil {
		return fmt.Errorf("filter candidates: %w", err)
	}

	sent := false
	if len(stale) == 0 {
		slog.Info("nothing needs to be poked",
			"run_id", runID,
			"candidates", len(candidates),
		)
	} else {
		body := digest.Build(w.baseURL, w.days, stale)
		slog.Info("digest composed",
			"run_id", runID,
			"stale", len(stale),
			"body", body,
		)

		if !w.send {
			slog.Info("sending disabled, digest not transmitted", "run_id", runID)
		} else if err := w.sender.Send(ctx, Subject, body); err != nil {
			slog.Error("reminder send failed", "run_id", runID, "error", err)
		} else {
			sent = true
		}
	}

	if w.store != nil {
		rec := audit.Run{
			RunID:      runID,
			Candidates: len(candidates),
			Stale:      len(stale),
			Sent:       sent,
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
		}
		if err := w.store.RecordRun(ctx, rec); err != nil {
			slog.Warn("failed to record reminder run", "run_id", runID, "error", err)
		}
	}

	return nil
}
