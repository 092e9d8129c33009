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

package models

// IngestedEmail is the normalized form of a forwarded-email metadata
// payload. Address fields carry bare addresses only — display names and
// angle brackets never survive parsing. To and Cc preserve input order.
//
// Constructed once per ingestion request, submitted to the CRM, then
// discarded. No local retention.
type IngestedEmail struct {
	// SentAt is the original send time as "YYYY-MM-DD HH:MM:SS" in UTC.
	SentAt  string
	From    string
	To      []string
	Cc      []string
	Subject string
	Body    string
}
