// Package config handles configuration for chatpanel.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/diogo/chatpanel/internal/models"
)

// Environment variables recognized by chatpanel
const (
	EnvHome     = "CHATPANEL_HOME"
	EnvEndpoint = "CHATPANEL_ENDPOINT"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", "notty" or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// Endpoint receives POST {"messages": [...]} and answers with one message.
	Endpoint string `json:"endpoint"`
	// StatusURL, when set, is probed after every submission to refresh the
	// online indicator.
	StatusURL       string `json:"status_url,omitempty"`
	MinPromptLength int    `json:"min_prompt_length"`
	// TimeoutSeconds bounds one request at the transport level. Zero means no limit.
	TimeoutSeconds  int            `json:"timeout_seconds"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	LogLevel        string         `json:"log_level"`
	Telemetry       bool           `json:"telemetry"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:        models.DefaultEndpoint,
		MinPromptLength: models.MinPromptLength,
		TimeoutSeconds:  0,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		LogLevel:        "info",
		Telemetry:       false,
		Markdown:        DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".chatpanel"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogDir returns the directory for log and telemetry files
func GetLogDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "logs"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.MinPromptLength <= 0 {
		cfg.MinPromptLength = models.MinPromptLength
	}

	return cfg, nil
}

// ApplyEnv overlays environment variables on cfg
func ApplyEnv(cfg Config) Config {
	if endpoint := os.Getenv(EnvEndpoint); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	return cfg
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setters maps a config key to the function that assigns it from a string
var setters = map[string]func(*Config, string) error{
	"endpoint":          func(c *Config, v string) error { c.Endpoint = v; return nil },
	"status_url":        func(c *Config, v string) error { c.StatusURL = v; return nil },
	"min_prompt_length": intSetter(func(c *Config, n int) { c.MinPromptLength = n }, 1),
	"timeout_seconds":   intSetter(func(c *Config, n int) { c.TimeoutSeconds = n }, 0),
	"copy_to_clipboard": boolSetter(func(c *Config, b bool) { c.CopyToClipboard = b }),
	"tui_theme":         func(c *Config, v string) error { c.TUITheme = v; return nil },
	"log_level": func(c *Config, v string) error {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(v)
			return nil
		}
		return fmt.Errorf("invalid log level %q (use debug, info, warn or error)", v)
	},
	"telemetry":                   boolSetter(func(c *Config, b bool) { c.Telemetry = b }),
	"markdown.style":              func(c *Config, v string) error { c.Markdown.Style = v; return nil },
	"markdown.enable_emoji":       boolSetter(func(c *Config, b bool) { c.Markdown.EnableEmoji = b }),
	"markdown.preserve_newlines":  boolSetter(func(c *Config, b bool) { c.Markdown.PreserveNewLines = b }),
	"markdown.table_wrap":         boolSetter(func(c *Config, b bool) { c.Markdown.TableWrap = b }),
	"markdown.inline_table_links": boolSetter(func(c *Config, b bool) { c.Markdown.InlineTableLinks = b }),
}

func intSetter(assign func(*Config, int), floor int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", v)
		}
		if n < floor {
			return fmt.Errorf("value must be at least %d", floor)
		}
		assign(c, n)
		return nil
	}
}

func boolSetter(assign func(*Config, bool)) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", v)
		}
		assign(c, b)
		return nil
	}
}

// Set assigns a single key from its string form
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := set(c, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Keys returns the settable config keys in sorted order
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
