// Package config handles the client's own settings file and portable
// profile files. The backend-owned configuration is not stored here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file inside the config directory
const FileName = "config.yaml"

// DefaultBackendURL is where the backend listens unless configured otherwise
const DefaultBackendURL = "http://127.0.0.1:7420"

// Log formats
const (
	LogFormatAuto    = "auto"
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Settings holds client-side settings
type Settings struct {
	BackendURL  string `yaml:"backend_url"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	Keybindings string `yaml:"keybindings"`
	DataDir     string `yaml:"data_dir,omitempty"`
}

// Defaults returns the settings used when no file exists
func Defaults() *Settings {
	return &Settings{
		BackendURL:  DefaultBackendURL,
		LogLevel:    "warn",
		LogFormat:   LogFormatAuto,
		Keybindings: "vim",
	}
}

// Load reads settings from the given directory. A missing file yields defaults.
func Load(configDir string) (*Settings, error) {
	s, err := LoadFile(filepath.Join(configDir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	return s, err
}

// LoadFile reads settings from an explicit file. Unset fields keep their defaults.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	s := Defaults()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.DataDir = ExpandHome(s.DataDir)
	return s, nil
}

// Validate checks the settings' own constraints
func (s *Settings) Validate() error {
	switch s.LogFormat {
	case LogFormatAuto, LogFormatConsole, LogFormatJSON, "":
	default:
		return fmt.Errorf("invalid log_format %q (want auto, console or json)", s.LogFormat)
	}
	switch s.Keybindings {
	case "vim", "standard", "":
	default:
		return fmt.Errorf("invalid keybindings %q (want vim or standard)", s.Keybindings)
	}
	if s.BackendURL != "" && !strings.HasPrefix(s.BackendURL, "http://") && !strings.HasPrefix(s.BackendURL, "https://") {
		return fmt.Errorf("invalid backend_url %q: must be http or https", s.BackendURL)
	}
	return nil
}

// Save writes settings to the given directory
func (s *Settings) Save(configDir string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, FileName), data, 0644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
