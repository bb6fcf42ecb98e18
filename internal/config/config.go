// Package config loads publisher configuration from YAML. Parsing is
// strict (unknown fields are rejected) and size-capped so a malformed or
// hostile file cannot exhaust memory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ysenda/go-notepress/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrConfigTooLarge  = errors.New("config exceeds maximum size")
	ErrInvalidPolicy   = errors.New("invalid missing-image policy")
	ErrInvalidTimeout  = errors.New("invalid timeout")
)

// MaxConfigBytes caps YAML input size.
const MaxConfigBytes = 1 << 20

// Missing-image policy values.
const (
	PolicySkip = "skip"
	PolicyFail = "fail"
)

// Config holds all configuration for publishing.
type Config struct {
	Platform PlatformConfig `yaml:"platform"`
	Source   SourceConfig   `yaml:"source"`
	Publish  PublishConfig  `yaml:"publish"`
}

// PlatformConfig describes the target content platform.
type PlatformConfig struct {
	BaseURL    string `yaml:"baseURL"`    // platform origin, e.g. https://note.example
	Account    string `yaml:"account"`    // account identity for reauth serialization
	Headless   bool   `yaml:"headless"`   // run the automation browser headless
	BrowserBin string `yaml:"browserBin"` // pre-installed browser binary (empty = rod default)
}

// SourceConfig describes the remote block-document service.
type SourceConfig struct {
	ServiceURL string `yaml:"serviceURL"` // block service origin (empty = markdown input only)
}

// PublishConfig tunes pipeline behavior.
type PublishConfig struct {
	MissingImage      string   `yaml:"missingImage"`      // "skip" (default) or "fail"
	WarnUnknownBlocks bool     `yaml:"warnUnknownBlocks"` // log unknown remote block kinds
	TimeoutSeconds    int      `yaml:"timeoutSeconds"`    // per-publish timeout (0 = default)
	Tags              []string `yaml:"tags"`              // tags applied to every draft
}

// DefaultConfig returns a neutral configuration.
func DefaultConfig() *Config {
	return &Config{
		Platform: PlatformConfig{Headless: true},
		Publish:  PublishConfig{MissingImage: PolicySkip, WarnUnknownBlocks: true},
	}
}

// Validate checks value ranges. Called automatically by LoadConfig, but
// available for consumers who construct Config manually.
func (c *Config) Validate() error {
	switch c.Publish.MissingImage {
	case "", PolicySkip, PolicyFail:
	default:
		return fmt.Errorf("%w: %q (must be %s or %s)",
			ErrInvalidPolicy, c.Publish.MissingImage, PolicySkip, PolicyFail)
	}
	if c.Publish.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTimeout, c.Publish.TimeoutSeconds)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name. A
// string containing a path separator is treated as a path; otherwise it
// is searched as a name in the standard locations. Missing files are an
// error, never a silent fallback.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := unmarshalStrict(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// unmarshalStrict parses size-capped YAML, rejecting unknown fields.
func unmarshalStrict(data []byte, v any) error {
	if len(data) > MaxConfigBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrConfigTooLarge, len(data), MaxConfigBytes)
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return nil
}

// resolveConfigPath searches for a config file by name: current
// directory first, then the user config directory, trying .yaml and .yml.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-notepress", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
