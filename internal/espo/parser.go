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

package espo

import (
	"fmt"
	"time"

	"github.com/crmops/espoflow/internal/models"
)

// peopleFromRows maps loosely-typed CRM rows into Person records. This is
// the coercion boundary — untyped JSON never escapes this package.
func peopleFromRows(rows []map[string]any, kind models.Kind) []models.Person {
	people := make([]models.Person, 0, len(rows))
	for _, row := range rows {
		people = append(people, models.Person{
			ID:           coerceString(row["id"]),
			Kind:         kind,
			Name:         coerceString(row["name"]),
			Email:        coerceString(row["emailAddress"]),
			LastModified: coerceString(row["modifiedAt"]),
		})
	}
	return people
}

// activitiesFromRows maps activity-history rows, parsing each dateStart.
// A row without a parseable dateStart is a schema failure.
func activitiesFromRows(rows []map[string]any) ([]models.Activity, error) {
	activities := make([]models.Activity, 0, len(rows))
	for _, row := range rows {
		raw := coerceString(row["dateStart"])
		start, err := parseCRMTime(raw)
		if err != nil {
			return nil, fmt.Errorf("activity dateStart %q: %w", raw, err)
		}
		activities = append(activities, models.Activity{DateStart: start})
	}
	return activities, nil
}

// crmTimeLayouts covers the timestamp shapes EspoCRM emits. The default
// is "2006-01-02 15:04:05" without a zone; some deployments return
// ISO-8601 with an offset.
var crmTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseCRMTime(raw string) (time.Time, error) {
	for _, layout := range crmTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp")
}

// coerceString renders a scalar JSON value as a string. The CRM's rows are
// loosely typed; everything the service needs is a string representation.
func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
