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

// espoflow ingestion server
//
// Entry point for the email-metadata ingestion service. It:
//  1. Loads configuration from config.yaml and ESPOCRM_* env vars
//  2. Connects to Redis (idempotency filter) and Postgres (audit log)
//     when configured — both are optional
//  3. Serves the ingestion endpoint for browser-extension pushes
//  4. Handles graceful shutdown on SIGTERM/SIGINT
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/crmops/espoflow/internal/audit"
	"github.com/crmops/espoflow/internal/config"
	"github.com/crmops/espoflow/internal/dedup"
	"github.com/crmops/espoflow/internal/espo"
	"github.com/crmops/espoflow/internal/ingest"
	"github.com/crmops/espoflow/internal/registrar"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("starting espoflow ingestion server")

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"crm", cfg.BaseURL,
		"port", cfg.Port,
		"register_email", cfg.RegisterEmail,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Idempotency Filter (optional) ---
	var filter ingest.IdempotencyFilter
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()

		f := dedup.NewFilter(rdb)
		if err := f.Ping(ctx); err != nil {
			slog.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		filter = f
		slog.Info("connected to Redis")
	} else {
		slog.Info("no Redis configured, idempotency filter disabled")
	}

	// --- Audit Store (optional) ---
	var store *audit.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to create Postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to connect to PostgreSQL", "error", err)
			os.Exit(1)
		}

		store, err = audit.NewStore(ctx, pool)
		if err != nil {
			slog.Error("failed to initialise audit store", "error", err)
			os.Exit(1)
		}
		slog.Info("connected to PostgreSQL")
	} else {
		slog.Info("no database configured, audit log disabled")
	}

	// --- CRM Client + Registrar ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	crm := espo.NewClient(httpClient, cfg.BaseURL, cfg.APIKey)
	reg := registrar.New(crm, cfg.ReminderFrom, cfg.ReminderTo)

	// --- Ingestion Server ---
	handler := ingest.NewHandler(reg, filter, store, cfg.RegisterEmail)
	ready, done, err := ingest.Serve(ctx, cfg.Port, handler)
	if err != nil {
		slog.Error("failed to start ingestion server", "error", err)
		os.Exit(1)
	}
	<-ready

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh

	slog.Info("received shutdown signal", "signal", sig)
	cancel()
	<-done

	slog.Info("ingestion server stopped")
}
