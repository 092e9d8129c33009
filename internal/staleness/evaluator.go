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

// Package staleness decides whether a candidate record is stale
// (reminder-worthy) or recently active (suppressed). Candidates arrive
// already filtered by modification time; the evaluator adds a secondary
// activity-history check against the CRM.
package staleness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crmops/espoflow/internal/models"
)

// historyLimit is how many recent activity entries the evaluator asks
// for; only the most recent one decides the outcome.
const historyLimit = 2

// defaultParallelism bounds concurrent activity lookups. They are
// independent read-only queries, so a small fan-out is safe.
const defaultParallelism = 4

// ActivitySource provides the recent activity history for a record,
// ordered descending by start time.
type ActivitySource interface {
	RecentActivity(ctx context.Context, kind models.Kind, id string, limit int) ([]models.Activity, error)
}

// Evaluator applies the rolling activity-window rule.
type Evaluator struct {
	source   ActivitySource
	window   time.Duration
	parallel int
	now      func() time.Time
}

// NewEvaluator creates an evaluator with a rolling window of windowDays
// days.
func NewEvaluator(source ActivitySource, windowDays int) *Evaluator {
	return &Evaluator{
		source:   source,
		window:   time.Duration(windowDays) * 24 * time.Hour,
		parallel: defaultParallelism,
		now:      time.Now,
	}
}

// IsActive reports whether the record's most recent activity falls within
// the rolling window. An entry exactly at the cutoff counts as recent. No
// history at all means stale — a record is never excluded for lack of
// history. A failed lookup is propagated, never treated as either state.
func (e *Evaluator) IsActive(ctx context.Context, p models.Person) (bool, error) {
	history, err := e.source.RecentActivity(ctx, p.Kind, p.ID, historyLimit)
	if err != nil {
		return false, fmt.Errorf("activity check for %s %s: %w", p.Kind, p.ID, err)
	}
	if len(history) == 0 {
		return false, nil
	}

	cutoff := e.now().Add(-e.window)
	active := !history[0].DateStart.Before(cutoff)
	if active {
		slog.Info("record has recent activity, suppressing reminder",
			"kind", p.Kind,
			"id", p.ID,
			"last_modified", p.LastModified,
			"last_activity", history[0].DateStart,
		)
	}
	return active, nil
}

// FilterStale returns the candidates that remain stale, preserving input
// order. Activity lookups run as independent bounded tasks; any lookup
// failure fails the whole call.
func (e *Evaluator) FilterStale(ctx context.Context, people []models.Person) ([]models.Person, error) {
	active := make([]bool, len(people))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallel)
	for i, p := range people {
		i, p := i, p
		g.Go(func() error {
			a, err := e.IsActive(gctx, p)
			if err != nil {
				return err
			}
			active[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stale := make([]models.Person, 0, len(people))
	for i, p := range people {
		if !active[i] {
			stale = append(stale, p)
		}
	}
	return stale, nil
}
