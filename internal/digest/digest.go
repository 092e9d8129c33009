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

// Package digest composes the multi-person reminder email body.
package digest

import (
	"fmt"
	"strings"

	"github.com/crmops/espoflow/internal/models"
)

// Build composes the reminder body for the given people. The output is
// deterministic: a fixed greeting, the threshold sentence, one line per
// person in input order, and a fixed sign-off. No reordering or
// deduplication happens here — the caller supplies the final list.
func Build(baseURL string, thresholdDays int, people []models.Person) string {
	var b strings.Builder
	b.WriteString("Dear team,\n\n")
	fmt.Fprintf(&b, "The following CRM entries have not seen interaction for more than %d days:\n\n", thresholdDays)

	for _, p := range people {
		b.WriteString(p.Line(baseURL))
		b.WriteString("\n")
	}

	b.WriteString("\nCheers,\nYour friendly CRM")
	return b.String()
}
