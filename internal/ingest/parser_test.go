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
	"testing"
)

// TestNormalize verifies the reference payload maps to its canonical form.
func TestNormalize(t *testing.T) {
	raw := `{"dateRaw":"2021-05-05T05:05:05.000Z","fromRaw":"Name <name@example.com>","toRaw":"Foo <foo@example.com>, Bar <bar@example.com>","ccRaw":"Aa <a@example.com>","subjectRaw":"Subject","bodyRaw":"Body"}`

	eml, err := Normalize([]byte(raw))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if eml.SentAt != "2021-05-05 05:05:05" {
		t.Errorf("SentAt = %q, want 2021-05-05 05:05:05", eml.SentAt)
	}
	if eml.From != "name@example.com" {
		t.Errorf("From = %q, want name@example.com", eml.From)
	}

	wantTo := []string{"foo@example.com", "bar@example.com"}
	if len(eml.To) != len(wantTo) {
		t.Fatalf("To = %v, want %v", eml.To, wantTo)
	}
	for i := range wantTo {
		if eml.To[i] != wantTo[i] {
			t.Errorf("To[%d] = %q, want %q", i, eml.To[i], wantTo[i])
		}
	}

	if len(eml.Cc) != 1 || eml.Cc[0] != "a@example.com" {
		t.Errorf("Cc = %v, want [a@example.com]", eml.Cc)
	}
	if eml.Subject != "Subject" || eml.Body != "Body" {
		t.Errorf("Subject/Body = %q/%q", eml.Subject, eml.Body)
	}
}

// TestNormalize_OffsetConvertedToUTC verifies non-UTC offsets are
// normalized to UTC wall-clock time.
func TestNormalize_OffsetConvertedToUTC(t *testing.T) {
	raw := `{"dateRaw":"2021-05-05T07:05:05+02:00","fromRaw":"a@x.com","toRaw":"","ccRaw":"","subjectRaw":"s","bodyRaw":"b"}`

	eml, err := Normalize([]byte(raw))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if eml.SentAt != "2021-05-05 05:05:05" {
		t.Errorf("SentAt = %q, want 2021-05-05 05:05:05", eml.SentAt)
	}
}

// TestNormalize_EmptyAddressFields verifies empty to/cc are permitted.
func TestNormalize_EmptyAddressFields(t *testing.T) {
	raw := `{"dateRaw":"2021-05-05T05:05:05Z","fromRaw":"a@x.com","toRaw":"","ccRaw":"","subjectRaw":"s","bodyRaw":"b"}`

	eml, err := Normalize([]byte(raw))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(eml.To) != 0 || len(eml.Cc) != 0 {
		t.Errorf("To/Cc = %v/%v, want empty", eml.To, eml.Cc)
	}
}

// TestNormalize_Errors verifies malformed payloads are rejected.
func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid JSON", `not json`},
		{"bad timestamp", `{"dateRaw":"yesterday","fromRaw":"a@x.com","toRaw":"","ccRaw":"","subjectRaw":"s","bodyRaw":"b"}`},
		{"missing timestamp", `{"fromRaw":"a@x.com","toRaw":"","ccRaw":"","subjectRaw":"s","bodyRaw":"b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Normalize([]byte(tt.raw)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

// TestNormalize_MissingKeys verifies a payload lacking any of the required
// keys is rejected instead of zero-filled. Present-but-empty values stay
// legal; only key absence is an error.
func TestNormalize_MissingKeys(t *testing.T) {
	keys := []string{"dateRaw", "fromRaw", "toRaw", "ccRaw", "subjectRaw", "bodyRaw"}
	full := map[string]string{
		"dateRaw":    "2021-05-05T05:05:05Z",
		"fromRaw":    "a@x.com",
		"toRaw":      "b@x.com",
		"ccRaw":      "",
		"subjectRaw": "s",
		"bodyRaw":    "b",
	}

	for _, missing := range keys {
		t.Run(missing, func(t *testing.T) {
			payload := make(map[string]string, len(full)-1)
			for k, v := range full {
				if k != missing {
					payload[k] = v
				}
			}
			data, err := json.Marshal(payload)
			if err != nil {
				t.Fatalf("marshal payload: %v", err)
			}
			if _, err := Normalize(data); err == nil {
				t.Errorf("expected error for payload without %s", missing)
			}
		})
	}
}

// TestNormalizeTimestamp_Layouts verifies accepted ISO-8601 variants.
func TestNormalizeTimestamp_Layouts(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2021-05-05T05:05:05.000Z", "2021-05-05 05:05:05"},
		{"2021-05-05T05:05:05Z", "2021-05-05 05:05:05"},
		{"2021-05-05T05:05:05", "2021-05-05 05:05:05"},
		{"2022-06-11 15:12:12", "2022-06-11 15:12:12"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := normalizeTimestamp(tt.raw)
			if err != nil {
				t.Fatalf("normalizeTimestamp(%q) failed: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("normalizeTimestamp(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
