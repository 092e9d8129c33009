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

package staleness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crmops/espoflow/internal/models"
)

// stubSource returns canned activity history per record ID.
type stubSource struct {
	history map[string][]models.Activity
	err     error
}

func (s *stubSource) RecentActivity(_ context.Context, _ models.Kind, id string, _ int) ([]models.Activity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.history[id], nil
}

var testNow = time.Date(2021, 5, 15, 12, 0, 0, 0, time.UTC)

func newTestEvaluator(source ActivitySource) *Evaluator {
	e := NewEvaluator(source, 10)
	e.now = func() time.Time { return testNow }
	return e
}

// TestIsActive_NoHistory verifies a record with no activity is always stale.
func TestIsActive_NoHistory(t *testing.T) {
	e := newTestEvaluator(&stubSource{history: map[string][]models.Activity{}})

	active, err := e.IsActive(context.Background(), models.Person{ID: "p1", Kind: models.KindLead})
	if err != nil {
		t.Fatalf("IsActive failed: %v", err)
	}
	if active {
		t.Error("record with no history must be stale")
	}
}

// TestIsActive_Boundary verifies the cutoff is inclusive: activity at
// exactly now − N days counts as recent.
func TestIsActive_Boundary(t *testing.T) {
	tests := []struct {
		name       string
		lastStart  time.Time
		wantActive bool
	}{
		{"well within window", testNow.Add(-3 * 24 * time.Hour), true},
		{"exactly at cutoff", testNow.Add(-10 * 24 * time.Hour), true},
		{"just past cutoff", testNow.Add(-10*24*time.Hour - time.Second), false},
		{"far outside window", testNow.Add(-30 * 24 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEvaluator(&stubSource{history: map[string][]models.Activity{
				"p1": {{DateStart: tt.lastStart}},
			}})

			active, err := e.IsActive(context.Background(), models.Person{ID: "p1", Kind: models.KindContact})
			if err != nil {
				t.Fatalf("IsActive failed: %v", err)
			}
			if active != tt.wantActive {
				t.Errorf("active = %v, want %v", active, tt.wantActive)
			}
		})
	}
}

// TestIsActive_ErrorPropagates verifies a failed activity query is never
// treated as a result.
func TestIsActive_ErrorPropagates(t *testing.T) {
	e := newTestEvaluator(&stubSource{err: errors.New("transport down")})

	if _, err := e.IsActive(context.Background(), models.Person{ID: "p1", Kind: models.KindLead}); err == nil {
		t.Fatal("expected lookup error to propagate")
	}
}

// TestFilterStale_PreservesOrder verifies only active records are dropped
// and the remaining ones keep their input order despite parallel lookups.
func TestFilterStale_PreservesOrder(t *testing.T) {
	e := newTestEvaluator(&stubSource{history: map[string][]models.Activity{
		"p2": {{DateStart: testNow.Add(-24 * time.Hour)}},  // active
		"p4": {{DateStart: testNow.Add(-48 * time.Hour)}},  // active
		"p3": {{DateStart: testNow.Add(-400 * time.Hour)}}, // stale
	}})

	people := []models.Person{
		{ID: "p1", Kind: models.KindLead},
		{ID: "p2", Kind: models.KindLead},
		{ID: "p3", Kind: models.KindContact},
		{ID: "p4", Kind: models.KindContact},
		{ID: "p5", Kind: models.KindContact},
	}

	stale, err := e.FilterStale(context.Background(), people)
	if err != nil {
		t.Fatalf("FilterStale failed: %v", err)
	}

	wantIDs := []string{"p1", "p3", "p5"}
	if len(stale) != len(wantIDs) {
		t.Fatalf("stale = %+v, want IDs %v", stale, wantIDs)
	}
	for i, id := range wantIDs {
		if stale[i].ID != id {
			t.Errorf("stale[%d].ID = %q, want %q", i, stale[i].ID, id)
		}
	}
}

// TestFilterStale_LookupFailureFailsRun verifies any failed lookup fails
// the whole filter call.
func TestFilterStale_LookupFailureFailsRun(t *testing.T) {
	e := newTestEvaluator(&stubSource{err: errors.New("boom")})

	people := []models.Person{{ID: "p1", Kind: models.KindLead}}
	if _, err := e.FilterStale(context.Background(), people); err == nil {
		t.Fatal("expected filter to fail when a lookup fails")
	}
}

// TestFilterStale_Empty verifies an empty candidate list is a no-op.
func TestFilterStale_Empty(t *testing.T) {
	e := newTestEvaluator(&stubSource{})

	stale, err := e.FilterStale(context.Background(), nil)
	if err != nil {
		t.Fatalf("FilterStale failed: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("expected empty result, got %+v", stale)
	}
}
