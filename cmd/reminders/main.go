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

// espoflow reminders
//
// One-shot reminder run: finds CRM leads and contacts that have gone
// stale and sends the team a digest email through the CRM itself.
//
// Usage:
//
//	go run ./cmd/reminders/ [--days 10] [--dry-run]
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crmops/espoflow/internal/audit"
	"github.com/crmops/espoflow/internal/config"
	"github.com/crmops/espoflow/internal/espo"
	"github.com/crmops/espoflow/internal/registrar"
	"github.com/crmops/espoflow/internal/reminder"
	"github.com/crmops/espoflow/internal/staleness"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// --- CLI Flags ---
	daysFlag := flag.Int("days", 0, "Staleness threshold in days (0 = use configured value)")
	dryRunFlag := flag.Bool("dry-run", false, "Compose and log the digest without sending it")
	flag.Parse()

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	days := cfg.StaleDays
	if *daysFlag > 0 {
		days = *daysFlag
	}
	send := cfg.SendEmail && !*dryRunFlag

	if send && (cfg.ReminderFrom == "" || cfg.ReminderTo == "") {
		slog.Error("reminder sender and recipient are required — set ESPOCRM_REMINDER_FROM and ESPOCRM_REMINDER_TO")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// --- Audit Store (optional) ---
	var store *audit.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to create Postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		store, err = audit.NewStore(ctx, pool)
		if err != nil {
			slog.Error("failed to initialise audit store", "error", err)
			os.Exit(1)
		}
	}

	// --- Wire the workflow ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	crm := espo.NewClient(httpClient, cfg.BaseURL, cfg.APIKey)

	workflow := reminder.New(reminder.Config{
		Lister:    crm,
		Evaluator: staleness.NewEvaluator(crm, days),
		Sender:    registrar.New(crm, cfg.ReminderFrom, cfg.ReminderTo),
		Store:     store,
		BaseURL:   cfg.BaseURL,
		Days:      days,
		Send:      send,
	})

	if err := workflow.Run(ctx); err != nil {
		slog.Error("reminder run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("reminder run complete")
}
