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

// Package registrar maps composed reminders and ingested emails into the
// CRM's email-creation payload and submits them. Both submission modes
// share one payload shape; only the status and the preserved metadata
// differ. Submission failure is returned to the caller, who decides
// severity — the reminder path only logs it, the ingestion path fails the
// request.
package registrar

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crmops/espoflow/internal/espo"
	"github.com/crmops/espoflow/internal/mailaddr"
	"github.com/crmops/espoflow/internal/models"
)

// Registrar submits email records to the CRM.
type Registrar struct {
	client *espo.Client
	from   string
	to     string
}

// New creates a registrar. from and to are the fixed reminder sender and
// recipient addresses; archived emails carry their own addressing.
func New(client *espo.Client, from, to string) *Registrar {
	return &Registrar{
		client: client,
		from:   from,
		to:     to,
	}
}

// Send submits a freshly composed message with status Sending — the CRM
// delivers it to the configured reminder recipient.
func (r *Registrar) Send(ctx context.Context, subject, body string) error {
	payload := espo.NewEmailPayload()
	payload.Status = "Sending"
	payload.To = r.to
	payload.From = r.from
	payload.Subject = subject
	payload.Name = subject
	payload.Body = body
	payload.BodyPlain = body

	if err := r.client.CreateEmail(ctx, payload); err != nil {
		return fmt.Errorf("send reminder email: %w", err)
	}

	slog.Info("reminder email submitted", "subject", subject, "to", r.to)
	return nil
}

// Archive records an already-sent ingested email with status Archived,
// preserving its original send time and addressing.
func (r *Registrar) Archive(ctx context.Context, eml models.IngestedEmail) error {
	payload := espo.NewEmailPayload()
	payload.Status = "Archived"
	payload.DateSent = eml.SentAt
	payload.To = mailaddr.Join(eml.To)
	payload.Cc = mailaddr.Join(eml.Cc)
	payload.From = eml.From
	payload.Subject = eml.Subject
	payload.Name = eml.Subject
	payload.Body = eml.Body
	payload.BodyPlain = eml.Body

	if err := r.client.CreateEmail(ctx, payload); err != nil {
		return fmt.Errorf("archive ingested email: %w", err)
	}

	slog.Info("ingested email archived",
		"from", eml.From,
		"subject", eml.Subject,
		"sent_at", eml.SentAt,
	)
	return nil
}
