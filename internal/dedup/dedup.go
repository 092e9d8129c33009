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

// Package dedup provides ingestion idempotency using a Redis SET with TTL.
// The browser extension may re-post the same forwarded email (retries,
// double clicks); the filter ensures only the first copy is archived in
// the CRM.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crmops/espoflow/internal/mailaddr"
	"github.com/crmops/espoflow/internal/models"
)

const (
	// DefaultTTL is how long we remember an archived email fingerprint.
	// Extension re-posts arrive within days, not weeks.
	DefaultTTL = 7 * 24 * time.Hour

	// keyPrefix namespaces fingerprint keys in Redis.
	keyPrefix = "espoflow:ingested:"
)

// Filter tracks which ingested emails have already been archived.
type Filter struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFilter creates an idempotency filter backed by Redis.
func NewFilter(rdb *redis.Client) *Filter {
	return &Filter{
		rdb: rdb,
		ttl: DefaultTTL,
	}
}

// IsNew returns true if the fingerprint has NOT been seen before.
// If true, the fingerprint is marked as seen atomically (SETNX).
func (f *Filter) IsNew(ctx context.Context, fingerprint string) (bool, error) {
	key := keyPrefix + fingerprint

	set, err := f.rdb.SetNX(ctx, key, 1, f.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup SETNX: %w", err)
	}

	return set, nil
}

// Ping checks the Redis connection.
func (f *Filter) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return f.rdb.Ping(ctx).Err()
}

// Fingerprint derives a stable identity for an ingested email from the
// fields that survive normalization. The body is excluded — forwarding
// tools occasionally rewrap it, and sender + timestamp + recipients +
// subject already identify a message.
func Fingerprint(eml *models.IngestedEmail) string {
	h := sha256.New()
	for _, part := range []string{eml.SentAt, eml.From, mailaddr.Join(eml.To), eml.Subject} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
