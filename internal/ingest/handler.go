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

// Package ingest handles email-metadata pushes from the browser
// extension. A POST carries the raw forwarded-email JSON; the handler
// normalizes it and archives it in the CRM. GET requests are health
// checks with no side effects.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/crmops/espoflow/internal/audit"
	"github.com/crmops/espoflow/internal/dedup"
	"github.com/crmops/espoflow/internal/models"
)

// successBody is the non-empty token the extension checks for.
const successBody = "Success"

// Archiver submits an ingested email to the CRM.
type Archiver interface {
	Archive(ctx context.Context, eml models.IngestedEmail) error
}

// IdempotencyFilter reports whether a fingerprint is new, marking it seen.
type IdempotencyFilter interface {
	IsNew(ctx context.Context, fingerprint string) (bool, error)
}

// Handler processes ingestion requests. It is stateless; every request is
// fully independent.
type Handler struct {
	archiver Archiver
	filter   IdempotencyFilter // nil when Redis is not configured
	store    *audit.Store      // nil when Postgres is not configured
	register bool              // false = archival administratively disabled
}

// NewHandler creates an ingestion handler. filter and store may be nil.
func NewHandler(archiver Archiver, filter IdempotencyFilter, store *audit.Store, register bool) *Handler {
	return &Handler{
		archiver: archiver,
		filter:   filter,
		store:    store,
		register: register,
	}
}

// ServeHTTP implements the ingestion contract:
//
//   - GET  → 200 with an empty body (health check, no side effects)
//   - POST → 200 with a success token when normalize+archive succeed,
//     400 with an empty body on any parse or registration failure
//
// There is no partial success — the whole sequence succeeds or the
// request is reported failed.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		return
	}
	h.servePost(w, r)
}

func (h *Handler) servePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := uuid.New().String()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read ingestion body", "request_id", requestID, "error", err)
		h.fail(ctx, w, audit.Ingestion{RequestID: requestID, Outcome: audit.OutcomeParseFailed})
		return
	}

	eml, err := Normalize(body)
	if err != nil {
		slog.Info("ingestion payload rejected",
			"request_id", requestID,
			"body_len", len(body),
			"error", err,
		)
		h.fail(ctx, w, audit.Ingestion{RequestID: requestID, Outcome: audit.OutcomeParseFailed})
		return
	}

	slog.Info("ingestion payload normalized",
		"request_id", requestID,
		"from", eml.From,
		"subject", eml.Subject,
		"sent_at", eml.SentAt,
	)

	if !h.register {
		// Archival administratively disabled — report success without
		// contacting the CRM.
		slog.Info("registration disabled, skipping archive", "request_id", requestID)
		h.succeed(ctx, w, audit.Ingestion{
			RequestID:   requestID,
			FromAddress: eml.From,
			Subject:     eml.Subject,
			Outcome:     audit.OutcomeSkipped,
		})
		return
	}

	fingerprint := dedup.Fingerprint(eml)

	if h.filter != nil {
		isNew, err := h.filter.IsNew(ctx, fingerprint)
		if err != nil {
			slog.Warn("idempotency check failed, archiving anyway",
				"request_id", requestID,
				"error", err,
			)
		} else if !isNew {
			slog.Info("duplicate ingestion, already archived",
				"request_id", requestID,
				"fingerprint", fingerprint,
			)
			h.succeed(ctx, w, audit.Ingestion{
				RequestID:   requestID,
				Fingerprint: fingerprint,
				FromAddress: eml.From,
				Subject:     eml.Subject,
				Outcome:     audit.OutcomeDuplicate,
			})
			return
		}
	}

	if err := h.archiver.Archive(ctx, *eml); err != nil {
		slog.Error("archive failed",
			"request_id", requestID,
			"from", eml.From,
			"error", err,
		)
		h.fail(ctx, w, audit.Ingestion{
			RequestID:   requestID,
			Fingerprint: fingerprint,
			FromAddress: eml.From,
			Subject:     eml.Subject,
			Outcome:     audit.OutcomeArchiveFailed,
		})
		return
	}

	h.succeed(ctx, w, audit.Ingestion{
		RequestID:   requestID,
		Fingerprint: fingerprint,
		FromAddress: eml.From,
		Subject:     eml.Subject,
		Outcome:     audit.OutcomeArchived,
	})
}

func (h *Handler) succeed(ctx context.Context, w http.ResponseWriter, rec audit.Ingestion) {
	h.record(ctx, rec)
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(successBody))
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, rec audit.Ingestion) {
	h.record(ctx, rec)
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusBadRequest)
}

// record writes the outcome to the audit store when one is configured.
// Audit failures never affect the request outcome.
func (h *Handler) record(ctx context.Context, rec audit.Ingestion) {
	if h.store == nil {
		return
	}
	if err := h.store.RecordIngestion(ctx, rec); err != nil {
		slog.Warn("failed to record ingestion outcome",
			"request_id", rec.RequestID,
			"error", err,
		)
	}
}

// Serve starts the ingestion HTTP server on the given port. It binds the
// port immediately and signals readiness via the first returned channel;
// the second channel closes once the server has stopped.
func Serve(ctx context.Context, port int, handler *Handler) (ready, done <-chan struct{}, err error) {
	mux := http.NewServeMux()
	mux.Handle("/", handler)

	server := &http.Server{
		Handler: mux,
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, nil, fmt.Errorf("bind ingestion port %d: %w", port, err)
	}

	readyCh := make(chan struct{})
	doneCh := make(chan struct{})

	go func() {
		<-ctx.Done()
		slog.Info("ingestion server shutting down")
		server.Close()
	}()

	go func() {
		slog.Info("ingestion server listening", "port", port)
		close(readyCh)
		if err := server.Serve(ln); err != http.ErrServerClosed {
			slog.Error("ingestion server error", "error", err)
		}
		close(doneCh)
	}()

	return readyCh, doneCh, nil
}
