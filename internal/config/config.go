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

// Package config loads configuration from config.yaml and environment
// variables. The YAML file is optional — a pure environment-driven
// deployment (the ESPOCRM_* variables) works without one.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultStaleDays is the staleness threshold when none is configured.
const DefaultStaleDays = 10

// Config holds all configuration for both binaries.
type Config struct {
	// CRM
	BaseURL     string
	APIKey      string
	HTTPTimeout time.Duration

	// Reminder workflow
	ReminderFrom string
	ReminderTo   string
	StaleDays    int
	SendEmail    bool

	// Ingestion
	Port          int
	RegisterEmail bool

	// Optional backing services
	RedisURL    string
	DatabaseURL string
}

// rawConfig mirrors the YAML structure for unmarshalling.
type rawConfig struct {
	CRM struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"crm"`
	Reminder struct {
		From      string `yaml:"from"`
		To        string `yaml:"to"`
		StaleDays int    `yaml:"stale_days"`
	} `yaml:"reminder"`
	Ingest struct {
		Port int `yaml:"port"`
	} `yaml:"ingest"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
}

// Load reads configuration from config.yaml (with env var expansion) and
// environment variables. Environment values win over YAML.
func Load() (*Config, error) {
	configPath := envOrDefault("CONFIG_PATH", "config.yaml")

	var raw rawConfig
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		// Expand ${VAR} references in the YAML
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config YAML: %w", err)
		}
	case os.IsNotExist(err):
		// No file — environment-only deployment
	default:
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	cfg := &Config{
		BaseURL:       strings.TrimRight(firstNonEmpty(os.Getenv("ESPOCRM_BASE_URL"), raw.CRM.BaseURL), "/"),
		APIKey:        firstNonEmpty(os.Getenv("ESPOCRM_API_KEY"), raw.CRM.APIKey),
		HTTPTimeout:   envOrDefaultDuration("HTTP_TIMEOUT", 30*time.Second),
		ReminderFrom:  firstNonEmpty(os.Getenv("ESPOCRM_REMINDER_FROM"), raw.Reminder.From),
		ReminderTo:    firstNonEmpty(os.Getenv("ESPOCRM_REMINDER_TO"), raw.Reminder.To),
		StaleDays:     envOrDefaultInt("STALE_DAYS", raw.Reminder.StaleDays),
		SendEmail:     envOrDefaultBool("ESPOCRM_SEND_EMAIL", true),
		Port:          envOrDefaultInt("PORT", raw.Ingest.Port),
		RegisterEmail: envOrDefaultBool("ESPOCRM_REGISTER_EMAIL", true),
		RedisURL:      firstNonEmpty(os.Getenv("REDIS_URL"), raw.Redis.URL),
		DatabaseURL:   firstNonEmpty(os.Getenv("DATABASE_URL"), raw.Database.URL),
	}

	if cfg.StaleDays <= 0 {
		cfg.StaleDays = DefaultStaleDays
	}
	if cfg.Port == 0 {
		cfg.Port = 25000
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("CRM base URL is required — set ESPOCRM_BASE_URL or crm.base_url")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("CRM API key is required — set ESPOCRM_API_KEY or crm.api_key")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envOrDefaultBool accepts both numeric toggles ("1"/"0", the original
// deployment convention) and true/false.
func envOrDefaultBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n > 0
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
