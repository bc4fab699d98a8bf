// Package settings persists the completion plugin's configuration between
// sessions.
//
// Settings are stored as YAML, by default at
// $XDG_CONFIG_HOME/wfcomplete/settings.yaml (see [os.UserConfigDir]).
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// AppName is the directory created under the user config directory.
	AppName = "wfcomplete"
	// FileName is the settings file name within that directory.
	FileName = "settings.yaml"
)

// Sentinel errors returned when reading or writing settings.
var (
	ErrReadSettings    = errors.New("read settings")
	ErrWriteSettings   = errors.New("write settings")
	ErrInvalidSettings = errors.New("invalid settings")
	ErrNoLocation      = errors.New("no settings location")
)

// Settings is the persisted configuration.
type Settings struct {
	// SchemaDir is the directory holding the workflow JSON Schema.
	SchemaDir string `yaml:"schemaDir,omitempty"`
}

// DefaultPath returns the settings file path under the user config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoLocation, err)
	}

	return filepath.Join(dir, AppName, FileName), nil
}

// Load reads settings from path. A missing file yields zero settings.
func Load(path string) (Settings, error) {
	var s Settings

	data, err := os.ReadFile(path) //nolint:gosec // Settings path from CLI flag is expected.
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}

	if err != nil {
		return s, fmt.Errorf("%w: %w", ErrReadSettings, err)
	}

	err = yaml.Unmarshal(data, &s)
	if err != nil {
		return s, fmt.Errorf("%w: %s: %w", ErrInvalidSettings, path, err)
	}

	return s, nil
}

// Save writes s to path, creating its directory if needed.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSettings, err)
	}

	err = os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSettings, err)
	}

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSettings, err)
	}

	return nil
}

// SchemaDirOrDefault returns SchemaDir, or the user's home directory when
// it is unset or blank.
func (s Settings) SchemaDirOrDefault() (string, error) {
	if dir := strings.TrimSpace(s.SchemaDir); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoLocation, err)
	}

	return home, nil
}
