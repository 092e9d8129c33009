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

// Package espo implements the EspoCRM REST API client used by both the
// reminder workflow and the ingestion path. List queries use server-side
// filtering via indexed where[i][type|attribute|value] parameter triples;
// responses are the CRM's {"list": [...]} envelope.
package espo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/crmops/espoflow/internal/models"
)

// Client talks to an EspoCRM instance. Authentication is a static API key
// sent as the X-Api-Key header on every request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates an EspoCRM API client. The httpClient must carry a
// bounded timeout — a hung CRM call must not block indefinitely.
func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// BaseURL returns the configured CRM base URL, used to derive UI view URLs.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// listEnvelope is the CRM's list response wrapper.
type listEnvelope struct {
	List []map[string]any `json:"list"`
}

// ListStaleLeads returns leads not modified for more than olderThanDays
// days, excluding terminal statuses (Converted, Dead), ascending by
// modification time.
func (c *Client) ListStaleLeads(ctx context.Context, olderThanDays int) ([]models.Person, error) {
	params := url.Values{}
	params.Set("select", "name,emailAddress,modifiedAt")
	params.Set("orderBy", "modifiedAt")
	params.Set("order", "asc")
	params.Set("where[0][type]", "olderThanXDays")
	params.Set("where[0][attribute]", "modifiedAt")
	params.Set("where[0][value]", strconv.Itoa(olderThanDays))
	params.Set("where[1][type]", "notIn")
	params.Set("where[1][attribute]", "status")
	params.Add("where[1][value][]", "Converted")
	params.Add("where[1][value][]", "Dead")

	rows, err := c.list(ctx, "/api/v1/Lead", params)
	if err != nil {
		return nil, fmt.Errorf("list stale leads: %w", err)
	}
	return peopleFromRows(rows, models.KindLead), nil
}

// ListStaleContacts returns contacts not modified for more than
// olderThanDays days, ascending by modification time.
func (c *Client) ListStaleContacts(ctx context.Context, olderThanDays int) ([]models.Person, error) {
	params := url.Values{}
	params.Set("select", "name,emailAddress,modifiedAt")
	params.Set("orderBy", "modifiedAt")
	params.Set("order", "asc")
	params.Set("where[0][type]", "olderThanXDays")
	params.Set("where[0][attribute]", "modifiedAt")
	params.Set("where[0][value]", strconv.Itoa(olderThanDays))

	rows, err := c.list(ctx, "/api/v1/Contact", params)
	if err != nil {
		return nil, fmt.Errorf("list stale contacts: %w", err)
	}
	return peopleFromRows(rows, models.KindContact), nil
}

// RecentActivity returns at most limit most-recent activity-history entries
// for a record, ordered descending by start time. An empty result means
// no activity on record.
func (c *Client) RecentActivity(ctx context.Context, kind models.Kind, id string, limit int) ([]models.Activity, error) {
	params := url.Values{}
	params.Set("maxSize", strconv.Itoa(limit))
	params.Set("orderBy", "dateStart")
	params.Set("order", "desc")

	endpoint := fmt.Sprintf("/api/v1/Activities/%s/%s/history", kind, id)
	rows, err := c.list(ctx, endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("activity history %s/%s: %w", kind, id, err)
	}
	return activitiesFromRows(rows)
}

// CreateEmail submits an email record to the CRM. Both the reminder send
// and the ingestion archive paths go through this single POST.
func (c *Client) CreateEmail(ctx context.Context, payload *EmailPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/Email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("create email returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// list issues a filtered GET and unwraps the {"list": [...]} envelope.
// A non-2xx status or a body without the expected shape is a hard failure.
func (c *Client) list(ctx context.Context, endpoint string, params url.Values) ([]map[string]any, error) {
	u := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s returned HTTP %d: %s", endpoint, resp.StatusCode, string(respBody))
	}

	var envelope listEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	if envelope.List == nil {
		return nil, fmt.Errorf("%s response missing list field", endpoint)
	}

	return envelope.List, nil
}
