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

// Package models defines the data structures shared across the service.
package models

import (
	"fmt"
	"time"
)

// Kind identifies which CRM sub-resource a person record belongs to.
// Its string value is the literal EspoCRM entity type used in API paths
// and UI view URLs.
type Kind string

const (
	KindLead    Kind = "Lead"
	KindContact Kind = "Contact"
)

// Person represents a lead or contact that is a candidate for a reminder.
// It is constructed fresh from a query response row on every workflow run
// and never persisted locally. ID and Kind together identify the
// underlying CRM resource.
type Person struct {
	ID           string
	Kind         Kind
	Name         string
	Email        string
	LastModified string
}

// ProfileURL returns the CRM UI view URL for this record.
func (p Person) ProfileURL(baseURL string) string {
	return fmt.Sprintf("%s/#%s/view/%s", baseURL, p.Kind, p.ID)
}

// Line formats the person as a single digest line.
func (p Person) Line(baseURL string) string {
	return fmt.Sprintf("- %s <%s>: last interaction %s - %s",
		p.Name, p.Email, p.LastModified, p.ProfileURL(baseURL))
}

// Activity is a single activity-history entry for a person. An empty
// history means "no activity on record", not an error.
type Activity struct {
	DateStart time.Time
}
