// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for fscout.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.fscout/config.toml
//   - ~/.fscout/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/fscout/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete fscout configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Provider selects the chat backend: "ollama" (local) or "cloud"
	// (OpenAI-compatible hosted API).
	Provider string `toml:"provider" json:"provider"`

	// WorkspaceRoot is the confinement root for all file operations.
	// Empty means the current working directory at startup.
	WorkspaceRoot string `toml:"workspace_root" json:"workspace_root"`

	// MaxIterations caps the number of model/tool round trips per question.
	MaxIterations int `toml:"max_iterations" json:"max_iterations"`

	// Ollama (local) configuration
	Ollama OllamaConfig `toml:"ollama" json:"ollama"`

	// Cloud (hosted OpenAI-compatible API) configuration
	Cloud CloudConfig `toml:"cloud" json:"cloud"`

	// Tools configuration
	Tools ToolsConfig `toml:"tools" json:"tools"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// OllamaConfig contains local Ollama server configuration.
type OllamaConfig struct {
	// URL is the base URL of the Ollama server
	URL string `toml:"url" json:"url"`
	// Model is the model to use with Ollama
	Model string `toml:"model" json:"model"`
	// RequestTimeoutSecs bounds a single non-streamed chat request.
	// A full generation holds the connection, so this is generous.
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`
}

// CloudConfig contains hosted API configuration. The API key itself is never
// stored here: APIKeyEnv names the environment variable that holds it.
type CloudConfig struct {
	// BaseURL is the OpenAI-compatible API base URL
	BaseURL string `toml:"base_url" json:"base_url"`
	// Model is the model to request from the hosted API
	Model string `toml:"model" json:"model"`
	// APIKeyEnv is the name of the environment variable holding the API key
	APIKeyEnv string `toml:"api_key_env" json:"api_key_env"`
	// RequestsPerMinute is the client-side rate limit (0 = library default)
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
	// RequestTimeoutSecs bounds a single chat request
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`
}

// ToolsConfig contains file-inspection toolset configuration.
type ToolsConfig struct {
	// ReadMaxChars is the default truncation ceiling for read_file
	ReadMaxChars int `toml:"read_max_chars" json:"read_max_chars"`
	// SummarizeMaxChars is the default truncation ceiling for summarize_file
	SummarizeMaxChars int `toml:"summarize_max_chars" json:"summarize_max_chars"`
	// ListShowLimit is the number of paths shown before the summary view
	ListShowLimit int `toml:"list_show_limit" json:"list_show_limit"`
	// TimeoutSecs bounds a single tool execution
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// UIConfig contains output configuration.
type UIConfig struct {
	// NoColor disables all styled output
	NoColor bool `toml:"no_color" json:"no_color"`
	// Raw disables markdown rendering of model answers
	Raw bool `toml:"raw" json:"raw"`
	// Verbose enables diagnostic output on stderr
	Verbose bool `toml:"verbose" json:"verbose"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version:       "1.0.0",
		Provider:      "ollama",
		WorkspaceRoot: "",
		MaxIterations: 10,

		Ollama: OllamaConfig{
			URL:                "http://127.0.0.1:11434",
			Model:              "llama3.2",
			RequestTimeoutSecs: 120,
		},

		Cloud: CloudConfig{
			BaseURL:            "https://api.openai.com/v1",
			Model:              "gpt-4o-mini",
			APIKeyEnv:          "OPENAI_API_KEY",
			RequestsPerMinute:  60,
			RequestTimeoutSecs: 120,
		},

		Tools: ToolsConfig{
			ReadMaxChars:      5000,
			SummarizeMaxChars: 10000,
			ListShowLimit:     50,
			TimeoutSecs:       30,
		},

		UI: UIConfig{
			NoColor: false,
			Raw:     false,
			Verbose: false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the fscout configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".fscout"), nil
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

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	// Defaults, with env overrides and validation
	cfg, err = finishLoad(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// finishLoad applies env overrides, defaults, and validation to a loaded config.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
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

	return finishLoad(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# fscout configuration file\n")
	buf.WriteString("# Generated by fscout - edit with care\n")
	buf.WriteString("\n")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Provider
	validProviders := map[string]bool{"ollama": true, "cloud": true}
	if !validProviders[strings.ToLower(c.Provider)] {
		errs = append(errs, ValidationError{
			Field:   "provider",
			Message: fmt.Sprintf("invalid provider '%s', must be one of: ollama, cloud", c.Provider),
		})
	}

	// Iteration cap
	if c.MaxIterations < 1 || c.MaxIterations > 100 {
		errs = append(errs, ValidationError{
			Field:   "max_iterations",
			Message: fmt.Sprintf("max_iterations must be 1-100, got %d", c.MaxIterations),
		})
	}

	// Ollama URL
	if c.Ollama.URL != "" {
		if _, err := url.Parse(c.Ollama.URL); err != nil {
			errs = append(errs, ValidationError{
				Field:   "ollama.url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}

	// Cloud base URL
	if c.Cloud.BaseURL != "" {
		u, err := url.Parse(c.Cloud.BaseURL)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   "cloud.base_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		} else if u.Scheme != "https" && u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
			errs = append(errs, ValidationError{
				Field:   "cloud.base_url",
				Message: "must use https (plain http is allowed only for localhost)",
			})
		}
	}

	if c.Cloud.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "cloud.requests_per_minute",
			Message: "must be non-negative",
		})
	}

	// Tool ceilings
	if c.Tools.ReadMaxChars < 0 {
		errs = append(errs, ValidationError{
			Field:   "tools.read_max_chars",
			Message: "must be non-negative",
		})
	}
	if c.Tools.SummarizeMaxChars < 0 {
		errs = append(errs, ValidationError{
			Field:   "tools.summarize_max_chars",
			Message: "must be non-negative",
		})
	}
	if c.Tools.ListShowLimit < 1 {
		errs = append(errs, ValidationError{
			Field:   "tools.list_show_limit",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Tools.ListShowLimit),
		})
	}
	if c.Tools.TimeoutSecs < 1 || c.Tools.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "tools.timeout_secs",
			Message: fmt.Sprintf("must be 1-600 seconds, got %d", c.Tools.TimeoutSecs),
		})
	}

	// Workspace root must be a directory when set
	if c.WorkspaceRoot != "" {
		info, err := os.Stat(c.WorkspaceRoot)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   "workspace_root",
				Message: fmt.Sprintf("not accessible: %v", err),
			})
		} else if !info.IsDir() {
			errs = append(errs, ValidationError{
				Field:   "workspace_root",
				Message: fmt.Sprintf("'%s' is not a directory", c.WorkspaceRoot),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Provider == "" {
		c.Provider = defaults.Provider
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = defaults.MaxIterations
	}

	if c.Ollama.URL == "" {
		c.Ollama.URL = defaults.Ollama.URL
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = defaults.Ollama.Model
	}
	if c.Ollama.RequestTimeoutSecs == 0 {
		c.Ollama.RequestTimeoutSecs = defaults.Ollama.RequestTimeoutSecs
	}

	if c.Cloud.BaseURL == "" {
		c.Cloud.BaseURL = defaults.Cloud.BaseURL
	}
	if c.Cloud.Model == "" {
		c.Cloud.Model = defaults.Cloud.Model
	}
	if c.Cloud.APIKeyEnv == "" {
		c.Cloud.APIKeyEnv = defaults.Cloud.APIKeyEnv
	}
	if c.Cloud.RequestsPerMinute == 0 {
		c.Cloud.RequestsPerMinute = defaults.Cloud.RequestsPerMinute
	}
	if c.Cloud.RequestTimeoutSecs == 0 {
		c.Cloud.RequestTimeoutSecs = defaults.Cloud.RequestTimeoutSecs
	}

	if c.Tools.ReadMaxChars == 0 {
		c.Tools.ReadMaxChars = defaults.Tools.ReadMaxChars
	}
	if c.Tools.SummarizeMaxChars == 0 {
		c.Tools.SummarizeMaxChars = defaults.Tools.SummarizeMaxChars
	}
	if c.Tools.ListShowLimit == 0 {
		c.Tools.ListShowLimit = defaults.Tools.ListShowLimit
	}
	if c.Tools.TimeoutSecs == 0 {
		c.Tools.TimeoutSecs = defaults.Tools.TimeoutSecs
	}
}

// Model returns the model name for the active provider.
func (c *Config) Model() string {
	if strings.ToLower(c.Provider) == "cloud" {
		return c.Cloud.Model
	}
	return c.Ollama.Model
}

// SetModel sets the model name for the active provider.
func (c *Config) SetModel(model string) {
	if strings.ToLower(c.Provider) == "cloud" {
		c.Cloud.Model = model
	} else {
		c.Ollama.Model = model
	}
}

// CloudAPIKey resolves the hosted-API key from the configured environment
// variable. The key itself is never persisted to the config file.
func (c *Config) CloudAPIKey() string {
	if c.Cloud.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.Cloud.APIKeyEnv))
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - FSCOUT_PROVIDER: overrides provider ("ollama" or "cloud")
//   - FSCOUT_MODEL: overrides the active provider's model
//   - FSCOUT_OLLAMA_URL: overrides ollama.url
//   - FSCOUT_CLOUD_URL: overrides cloud.base_url
//   - FSCOUT_ROOT: overrides workspace_root
//   - FSCOUT_MAX_ITERATIONS: overrides max_iterations
//   - FSCOUT_DEBUG: set to "1" or "true" to enable verbose output
//   - NO_COLOR: disables styled output (any non-empty value)
func (c *Config) ApplyEnvOverrides() {
	if provider := os.Getenv("FSCOUT_PROVIDER"); provider != "" {
		c.Provider = provider
	}

	if model := os.Getenv("FSCOUT_MODEL"); model != "" {
		c.SetModel(model)
	}

	if u := os.Getenv("FSCOUT_OLLAMA_URL"); u != "" {
		c.Ollama.URL = u
	}

	if u := os.Getenv("FSCOUT_CLOUD_URL"); u != "" {
		c.Cloud.BaseURL = u
	}

	if root := os.Getenv("FSCOUT_ROOT"); root != "" {
		c.WorkspaceRoot = root
	}

	if iters := os.Getenv("FSCOUT_MAX_ITERATIONS"); iters != "" {
		if n, err := strconv.Atoi(iters); err == nil && n > 0 {
			c.MaxIterations = n
		}
	}

	if debug := os.Getenv("FSCOUT_DEBUG"); debug != "" {
		c.UI.Verbose = debug == "1" || strings.ToLower(debug) == "true"
	}

	if os.Getenv("NO_COLOR") != "" {
		c.UI.NoColor = true
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ollama.model").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation (e.g., "ollama.model").
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("cannot set field: %s", key)
			}
			return setFieldValue(field, value)
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	// String input gets converted to the field's type
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"provider",
		"workspace_root",
		"max_iterations",
		"ollama.url",
		"ollama.model",
		"ollama.request_timeout_secs",
		"cloud.base_url",
		"cloud.model",
		"cloud.api_key_env",
		"cloud.requests_per_minute",
		"cloud.request_timeout_secs",
		"tools.read_max_chars",
		"tools.summarize_max_chars",
		"tools.list_show_limit",
		"tools.timeout_secs",
		"ui.no_color",
		"ui.raw",
		"ui.verbose",
	}
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config for debugging.
// The config never stores secrets (the cloud key lives in the environment),
// so no redaction pass is needed here.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
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
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
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
