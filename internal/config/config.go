// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for portfolio-chat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.portfolio-chat/config.toml
//   - ~/.portfolio-chat/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/portfolio-chat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete portfolio-chat configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Server      ServerConfig      `toml:"server" json:"server"`
	Model       ModelConfig       `toml:"model" json:"model"`
	Limits      LimitsConfig      `toml:"limits" json:"limits"`
	Transcripts TranscriptsConfig `toml:"transcripts" json:"transcripts"`
	Client      ClientConfig      `toml:"client" json:"client"`
}

// ServerConfig controls the HTTP listener and its middleware.
type ServerConfig struct {
	// Addr is the listen address (host:port).
	Addr string `toml:"addr" json:"addr"`
	// ReadTimeoutSecs bounds reading the request, including the body.
	ReadTimeoutSecs int `toml:"read_timeout_secs" json:"read_timeout_secs"`
	// WriteTimeoutSecs bounds the whole response. Must exceed model.max_duration_secs.
	WriteTimeoutSecs int `toml:"write_timeout_secs" json:"write_timeout_secs"`
	// MaxBodyBytes caps the /api/chat request body.
	MaxBodyBytes int64 `toml:"max_body_bytes" json:"max_body_bytes"`
	// TrustProxyHeaders enables X-Forwarded-For / X-Real-IP / CF-Connecting-IP
	// when deriving the client key. Enable only behind a proxy that sets them.
	TrustProxyHeaders bool `toml:"trust_proxy_headers" json:"trust_proxy_headers"`
	// AllowedOrigins for CORS. "*" allows any origin.
	AllowedOrigins []string `toml:"allowed_origins" json:"allowed_origins"`
	// BurstRPS and Burst configure the short-term per-client token bucket
	// applied in front of the daily limiter. BurstRPS 0 disables it.
	BurstRPS float64 `toml:"burst_rps" json:"burst_rps"`
	Burst    int     `toml:"burst" json:"burst"`
}

// ModelConfig configures the upstream language model.
type ModelConfig struct {
	// Name is the Gemini model identifier.
	Name string `toml:"name" json:"name"`
	// APIKey is the Gemini credential. Usually supplied through
	// GOOGLE_GENERATIVE_AI_API_KEY rather than the file.
	APIKey string `toml:"api_key" json:"api_key"`
	// Temperature is passed through to the model. Negative means provider default.
	Temperature float64 `toml:"temperature" json:"temperature"`
	// MaxSteps is the ceiling on model invocations per chat turn.
	MaxSteps int `toml:"max_steps" json:"max_steps"`
	// MaxDurationSecs is the wall-clock ceiling of one streamed response.
	MaxDurationSecs int `toml:"max_duration_secs" json:"max_duration_secs"`
}

// LimitsConfig configures the daily admission budget.
type LimitsConfig struct {
	PerClientDaily int `toml:"per_client_daily" json:"per_client_daily"`
	GlobalDaily    int `toml:"global_daily" json:"global_daily"`
	// Store selects the counter backend: "memory" or "badger".
	Store string `toml:"store" json:"store"`
	// BadgerDir is the data directory for the badger store (empty = ~/.portfolio-chat/limits).
	BadgerDir string `toml:"badger_dir" json:"badger_dir"`
	// TimeZone names the location whose calendar day defines the window ("Local", "UTC", IANA name).
	TimeZone string `toml:"time_zone" json:"time_zone"`
}

// TranscriptsConfig controls the SQLite conversation archive.
type TranscriptsConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path of the SQLite database (empty = ~/.portfolio-chat/transcripts.db).
	Path string `toml:"path" json:"path"`
}

// ClientConfig configures the terminal client commands (chat, ask).
type ClientConfig struct {
	ServerURL      string `toml:"server_url" json:"server_url"`
	RenderMarkdown bool   `toml:"render_markdown" json:"render_markdown"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Server: ServerConfig{
			Addr:              "127.0.0.1:8787",
			ReadTimeoutSecs:   15,
			WriteTimeoutSecs:  60,
			MaxBodyBytes:      1 << 20,
			TrustProxyHeaders: true,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"https://reactopia.me",
			},
			BurstRPS: 1,
			Burst:    5,
		},
		Model: ModelConfig{
			Name:            "gemini-2.5-flash",
			Temperature:     -1,
			MaxSteps:        5,
			MaxDurationSecs: 30,
		},
		Limits: LimitsConfig{
			PerClientDaily: 100,
			GlobalDaily:    10000,
			Store:          "memory",
			TimeZone:       "Local",
		},
		Transcripts: TranscriptsConfig{
			Enabled: false,
		},
		Client: ClientConfig{
			ServerURL:      "http://127.0.0.1:8787",
			RenderMarkdown: true,
		},
	}
}

// MaxDuration returns the response ceiling as a duration.
func (m ModelConfig) MaxDuration() time.Duration {
	return time.Duration(m.MaxDurationSecs) * time.Second
}

// Location resolves the configured time zone.
func (l LimitsConfig) Location() (*time.Location, error) {
	switch strings.ToLower(l.TimeZone) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	}
	return time.LoadLocation(l.TimeZone)
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the configuration directory (~/.portfolio-chat).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".portfolio-chat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir creates the config directory with owner-only permissions.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// DataPath resolves name inside the config directory.
func DataPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load loads configuration from the default locations.
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	for _, candidate := range []struct {
		path func() (string, error)
		load func(*Config, string) error
		kind string
	}{
		{ConfigPathTOML, LoadTOML, "TOML"},
		{ConfigPathJSON, LoadJSON, "JSON"},
	} {
		path, err := candidate.path()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		if err := candidate.load(cfg, path); err != nil {
			loadErr = fmt.Errorf("failed to load %s config: %w", candidate.kind, err)
			cfg = Default()
			continue
		}
		if err := cfg.finish(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies env overrides, defaults and validation, in that order.
func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// fillDefaults fills in values a partial file left empty.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if cfg.Model.Name == "" {
		cfg.Model.Name = defaults.Model.Name
	}
	if cfg.Limits.Store == "" {
		cfg.Limits.Store = defaults.Limits.Store
	}
	if cfg.Limits.TimeZone == "" {
		cfg.Limits.TimeZone = defaults.Limits.TimeZone
	}
	if cfg.Client.ServerURL == "" {
		cfg.Client.ServerURL = defaults.Client.ServerURL
	}
	return nil
}

// SetDefaults replaces zero numeric settings with their defaults.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Server.ReadTimeoutSecs <= 0 {
		c.Server.ReadTimeoutSecs = d.Server.ReadTimeoutSecs
	}
	if c.Server.WriteTimeoutSecs <= 0 {
		c.Server.WriteTimeoutSecs = d.Server.WriteTimeoutSecs
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = d.Server.MaxBodyBytes
	}
	if c.Server.BurstRPS > 0 && c.Server.Burst <= 0 {
		c.Server.Burst = d.Server.Burst
	}
	if c.Model.MaxSteps <= 0 {
		c.Model.MaxSteps = d.Model.MaxSteps
	}
	if c.Model.MaxDurationSecs <= 0 {
		c.Model.MaxDurationSecs = d.Model.MaxDurationSecs
	}
	if c.Limits.PerClientDaily <= 0 {
		c.Limits.PerClientDaily = d.Limits.PerClientDaily
	}
	if c.Limits.GlobalDaily <= 0 {
		c.Limits.GlobalDaily = d.Limits.GlobalDaily
	}
}

// =============================================================================
// SAVING
// =============================================================================

// SaveTOML writes cfg to path atomically with owner-only permissions.
// The API key is never written; it belongs in the environment.
func SaveTOML(cfg *Config, path string) error {
	clone := cfg.Clone()
	clone.Model.APIKey = ""

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(clone); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
// A missing API key is not a validation error: the server reports it per
// request so the deployment still answers /health.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Server.Addr == "" {
		errs = append(errs, ValidationError{Field: "server.addr", Message: "must not be empty"})
	}
	if c.Server.BurstRPS < 0 {
		errs = append(errs, ValidationError{Field: "server.burst_rps", Message: "must not be negative"})
	}
	if c.Server.WriteTimeoutSecs <= c.Model.MaxDurationSecs {
		errs = append(errs, ValidationError{
			Field:   "server.write_timeout_secs",
			Message: fmt.Sprintf("must exceed model.max_duration_secs (%d)", c.Model.MaxDurationSecs),
		})
	}

	if c.Model.Name == "" {
		errs = append(errs, ValidationError{Field: "model.name", Message: "must not be empty"})
	}
	if c.Model.Temperature > 2 {
		errs = append(errs, ValidationError{Field: "model.temperature", Message: "must be at most 2.0"})
	}
	if c.Model.MaxSteps > 20 {
		errs = append(errs, ValidationError{Field: "model.max_steps", Message: "must be at most 20"})
	}

	if c.Limits.PerClientDaily > c.Limits.GlobalDaily {
		errs = append(errs, ValidationError{
			Field:   "limits.per_client_daily",
			Message: fmt.Sprintf("must not exceed limits.global_daily (%d)", c.Limits.GlobalDaily),
		})
	}
	switch strings.ToLower(c.Limits.Store) {
	case "memory", "badger":
	default:
		errs = append(errs, ValidationError{
			Field:   "limits.store",
			Message: fmt.Sprintf("invalid store '%s', must be one of: memory, badger", c.Limits.Store),
		})
	}
	if _, err := c.Limits.Location(); err != nil {
		errs = append(errs, ValidationError{Field: "limits.time_zone", Message: err.Error()})
	}

	if c.Client.ServerURL != "" {
		if u, err := url.Parse(c.Client.ServerURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{Field: "client.server_url", Message: "must be an absolute URL"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported variables:
//   - GOOGLE_GENERATIVE_AI_API_KEY: model.api_key
//   - GEMINI_API_KEY: model.api_key when the above is unset
//   - PORTFOLIO_CHAT_ADDR: server.addr
//   - PORTFOLIO_CHAT_MODEL: model.name
//   - PORTFOLIO_CHAT_USER_DAILY_LIMIT: limits.per_client_daily
//   - PORTFOLIO_CHAT_GLOBAL_DAILY_LIMIT: limits.global_daily
//   - PORTFOLIO_CHAT_LIMIT_STORE: limits.store
//   - PORTFOLIO_CHAT_TRANSCRIPTS: transcripts.enabled
//   - PORTFOLIO_CHAT_SERVER_URL: client.server_url
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("GOOGLE_GENERATIVE_AI_API_KEY"); key != "" {
		c.Model.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Model.APIKey = key
	}

	if addr := os.Getenv("PORTFOLIO_CHAT_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if model := os.Getenv("PORTFOLIO_CHAT_MODEL"); model != "" {
		c.Model.Name = model
	}
	if n, ok := envInt("PORTFOLIO_CHAT_USER_DAILY_LIMIT"); ok {
		c.Limits.PerClientDaily = n
	}
	if n, ok := envInt("PORTFOLIO_CHAT_GLOBAL_DAILY_LIMIT"); ok {
		c.Limits.GlobalDaily = n
	}
	if store := os.Getenv("PORTFOLIO_CHAT_LIMIT_STORE"); store != "" {
		c.Limits.Store = store
	}
	if v := os.Getenv("PORTFOLIO_CHAT_TRANSCRIPTS"); v != "" {
		c.Transcripts.Enabled = v == "1" || strings.ToLower(v) == "true"
	}
	if u := os.Getenv("PORTFOLIO_CHAT_SERVER_URL"); u != "" {
		c.Client.ServerURL = u
	}
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring %s=%q: not an integer\n", name, raw)
		return 0, false
	}
	return n, true
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	return &clone
}

// String returns a human-readable summary with the API key masked.
func (c *Config) String() string {
	clone := c.Clone()
	clone.Model.APIKey = util.MaskSecret(c.Model.APIKey)
	data, err := json.MarshalIndent(clone, "", "  ")
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
