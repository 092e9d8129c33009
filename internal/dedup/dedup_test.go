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

package dedup

import (
	"testing"

	"github.com/crmops/espoflow/internal/models"
)

// TestFingerprint_Stable verifies the same email always hashes the same.
func TestFingerprint_Stable(t *testing.T) {
	eml := &models.IngestedEmail{
		SentAt:  "2021-05-05 05:05:05",
		From:    "name@example.com",
		To:      []string{"foo@example.com", "bar@example.com"},
		Subject: "Subject",
		Body:    "Body",
	}

	if Fingerprint(eml) != Fingerprint(eml) {
		t.Error("fingerprint not stable for identical input")
	}
}

// TestFingerprint_Distinct verifies distinct messages hash differently,
// including field-boundary shifts.
func TestFingerprint_Distinct(t *testing.T) {
	base := models.IngestedEmail{
		SentAt:  "2021-05-05 05:05:05",
		From:    "name@example.com",
		To:      []string{"foo@example.com"},
		Subject: "Subject",
	}

	other := base
	other.Subject = "Subject 2"
	if Fingerprint(&base) == Fingerprint(&other) {
		t.Error("different subjects must produce different fingerprints")
	}

	// Moving characters across a field boundary must change the hash.
	shifted := base
	shifted.From = "name@example.comS"
	shifted.Subject = "ubject"
	shifted.To = nil
	if Fingerprint(&base) == Fingerprint(&shifted) {
		t.Error("field-boundary shift must change the fingerprint")
	}
}

// TestFingerprint_BodyIgnored verifies body rewrapping does not break
// idempotency.
func TestFingerprint_BodyIgnored(t *testing.T) {
	a := models.IngestedEmail{SentAt: "2021-05-05 05:05:05", From: "x@y.com", Subject: "s", Body: "one"}
	b := a
	b.Body = "two"

	if Fingerprint(&a) != Fingerprint(&b) {
		t.Error("body must not affect the fingerprint")
	}
}
