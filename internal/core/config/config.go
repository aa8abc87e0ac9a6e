// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nischay/kualitee-cli/internal/core/format"
	"github.com/nischay/kualitee-cli/internal/core/schema"
	"gopkg.in/yaml.v3"
)

// Constants for default values
const (
	DefaultConfigFileName     = "config.json"
	DefaultBaseURL            = "https://apiss3.kualitee.com/api/v2"
	DefaultLogDir             = "logs"
	DefaultLogLevel           = "debug"
	DefaultListLength         = 2000
	DefaultFetchWorkers       = 10
	DefaultRCAField           = "custom_field_11665"
	DefaultTimeoutSeconds     = 0
	DefaultInsecureSkipVerify = false
)

// ErrConfigNotFound is returned when the config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// SampleConfig is printed when no config file can be found.
const SampleConfig = `{
  "token": "TOKEN_HERE",
  "project_id": 27433
}`

// Config holds the application configuration
type Config struct {
	// Credentials
	Token     string `yaml:"token"`
	ProjectID int    `yaml:"project_id"`

	// Remote API
	BaseURL            string `yaml:"base_url"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`

	// Listing and batch behaviour
	DefectListLength   int    `yaml:"defect_list_length"`
	TestCaseListLength int    `yaml:"test_case_list_length"`
	FetchWorkers       int    `yaml:"fetch_workers"`
	RCAField           string `yaml:"rca_field"`

	// Logging
	LogDir   string `yaml:"log_dir"`
	LogLevel string `yaml:"log_level"`
}

// configSchema is the JSON schema every config file must satisfy after defaults are merged in.
var configSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"token", "project_id"},
	"properties": map[string]interface{}{
		"token":                 map[string]interface{}{"type": "string", "minLength": 1},
		"project_id":            map[string]interface{}{"type": "integer"},
		"base_url":              map[string]interface{}{"type": "string", "minLength": 1},
		"timeout_seconds":       map[string]interface{}{"type": "integer", "minimum": 0},
		"insecure_skip_verify":  map[string]interface{}{"type": "boolean"},
		"defect_list_length":    map[string]interface{}{"type": "integer", "minimum": 1},
		"test_case_list_length": map[string]interface{}{"type": "integer", "minimum": 1},
		"fetch_workers":         map[string]interface{}{"type": "integer", "minimum": 1},
		"rca_field":             map[string]interface{}{"type": "string", "minLength": 1},
		"log_dir":               map[string]interface{}{"type": "string", "minLength": 1},
		"log_level": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"debug", "info", "warn", "error"},
		},
	},
}

// DefaultValues returns the optional settings applied when a config file omits them.
func DefaultValues() map[string]interface{} {
	return map[string]interface{}{
		"base_url":              DefaultBaseURL,
		"timeout_seconds":       DefaultTimeoutSeconds,
		"insecure_skip_verify":  DefaultInsecureSkipVerify,
		"defect_list_length":    DefaultListLength,
		"test_case_list_length": DefaultListLength,
		"fetch_workers":         DefaultFetchWorkers,
		"rca_field":             DefaultRCAField,
		"log_dir":               DefaultLogDir,
		"log_level":             DefaultLogLevel,
	}
}

// LoadConfig reads the config file at path (config.json when empty), merges the
// defaults, validates the result and decodes it.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFileName
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("error accessing config file '%s': %w", path, err)
	}

	var raw map[string]interface{}
	if err := format.ParseFile(path, &raw); err != nil {
		return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	return FromMap(raw)
}

// FromMap validates an already decoded config document.
func FromMap(raw map[string]interface{}) (*Config, error) {
	merged := schema.MergeWithDefaults(raw, DefaultValues())
	if err := schema.ValidateDocument(configSchema, merged); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Round-trip through YAML so the struct tags drive decoding.
	data, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("error re-encoding configuration: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error decoding configuration: %w", err)
	}

	return cfg, nil
}

// Timeout returns the HTTP client timeout; zero means no timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
