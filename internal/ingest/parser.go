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

package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/crmops/espoflow/internal/mailaddr"
	"github.com/crmops/espoflow/internal/models"
)

// rawEmail mirrors the browser-extension POST body. Pointer fields
// distinguish an absent key from an empty value: all six keys are
// required.
type rawEmail struct {
	DateRaw    *string `json:"dateRaw"`
	FromRaw    *string `json:"fromRaw"`
	ToRaw      *string `json:"toRaw"`
	CcRaw      *string `json:"ccRaw"`
	SubjectRaw *string `json:"subjectRaw"`
	BodyRaw    *string `json:"bodyRaw"`
}

func (r *rawEmail) validate() error {
	missing := func(name string, v *string) error {
		if v == nil {
			return fmt.Errorf("missing required key %q", name)
		}
		return nil
	}
	for _, check := range []struct {
		name string
		v    *string
	}{
		{"dateRaw", r.DateRaw},
		{"fromRaw", r.FromRaw},
		{"toRaw", r.ToRaw},
		{"ccRaw", r.CcRaw},
		{"subjectRaw", r.SubjectRaw},
		{"bodyRaw", r.BodyRaw},
	} {
		if err := missing(check.name, check.v); err != nil {
			return err
		}
	}
	return nil
}

// Normalize converts a raw forwarded-email metadata payload into an
// IngestedEmail. All six keys must be present (empty values are fine):
// header-style address strings become bare canonical
// address lists and the ISO-8601 timestamp becomes the CRM's
// "YYYY-MM-DD HH:MM:SS" form in UTC. Subject and body pass through
// verbatim.
func Normalize(data []byte) (*models.IngestedEmail, error) {
	var raw rawEmail
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if err := raw.validate(); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	sentAt, err := normalizeTimestamp(*raw.DateRaw)
	if err != nil {
		return nil, fmt.Errorf("normalize dateRaw: %w", err)
	}

	return &models.IngestedEmail{
		SentAt:  sentAt,
		From:    mailaddr.First(*raw.FromRaw),
		To:      mailaddr.ParseList(*raw.ToRaw),
		Cc:      mailaddr.ParseList(*raw.CcRaw),
		Subject: *raw.SubjectRaw,
		Body:    *raw.BodyRaw,
	}, nil
}

// timestampLayouts covers the ISO-8601 shapes the extension produces.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func normalizeTimestamp(raw string) (string, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format("2006-01-02 15:04:05"), nil
		}
	}
	return "", fmt.Errorf("unrecognised timestamp %q", raw)
}
