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

// Package mailaddr parses RFC 2822 style address header strings
// ("Display Name <addr>, addr2, ...") into bare canonical addresses.
package mailaddr

import (
	"net/mail"
	"strings"
)

// ParseList extracts the bare address portion of every parseable entry in
// the given header-style strings, in original order. Display names are
// discarded. Malformed entries are skipped rather than failing the call —
// arbitrary input never produces an error, worst case an empty list.
func ParseList(raws ...string) []string {
	var addrs []string
	for _, raw := range raws {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		parsed, err := mail.ParseAddressList(raw)
		if err == nil {
			for _, a := range parsed {
				addrs = append(addrs, a.Address)
			}
			continue
		}
		// Whole-list parse failed. Fall back to per-entry parsing so one
		// malformed entry does not drop its neighbours.
		for _, part := range splitEntries(raw) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if a, err := mail.ParseAddress(part); err == nil {
				addrs = append(addrs, a.Address)
			}
		}
	}
	return addrs
}

// splitEntries splits an address list on commas, except commas inside a
// quoted display name, so `"Smith, John" <j@x>` stays one entry. Angle
// brackets are not tracked: commas only appear there in obsolete route
// syntax, which the parser rejects regardless.
func splitEntries(raw string) []string {
	var entries []string
	var start int
	var inQuote, escaped bool
	for i, r := range raw {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inQuote:
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			entries = append(entries, raw[start:i])
			start = i + 1
		}
	}
	return append(entries, raw[start:])
}

// First returns the first parseable address in raw, or "" when none exists.
func First(raw string) string {
	addrs := ParseList(raw)
	if len(addrs) == 0 {
		return ""
	}
	return addrs[0]
}

// Join concatenates addresses with ";" and no trailing separator, the form
// the CRM email schema expects. An empty list yields an empty string.
func Join(addrs []string) string {
	return strings.Join(addrs, ";")
}
