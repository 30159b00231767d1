package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfDir         = "conf"
	DefaultDataDir         = "data"
	DefaultHeaderDelimiter = ":"

	ViewIDFileName   = "view_id.txt"
	SettingsFileName = "uaexport.yaml"
	credentialsGlob  = "*.json"
)

// ErrConfigurationMissing is returned when the credentials file or view ID cannot be found
var ErrConfigurationMissing = errors.New("configuration missing")

// FindCredentialsFile returns the single service account JSON file in confDir
func FindCredentialsFile(confDir string) (string, error) {
	candidates, err := filepath.Glob(filepath.Join(confDir, credentialsGlob))
	if err != nil {
		return "", fmt.Errorf("failed to search %s: %w", confDir, err)
	}

	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return "", fmt.Errorf("%w: no credentials file in %s - put your service account key in %s",
			ErrConfigurationMissing, confDir, filepath.Join(confDir, "<id>.json"))
	default:
		return "", fmt.Errorf("%w: expected exactly one credentials file in %s, found %d",
			ErrConfigurationMissing, confDir, len(candidates))
	}
}

// ViewIDPath returns the path of the view ID file inside confDir
func ViewIDPath(confDir string) string {
	return filepath.Join(confDir, ViewIDFileName)
}

// LoadViewID reads the analytics view ID from confDir/view_id.txt
func LoadViewID(confDir string) (string, error) {
	path := ViewIDPath(confDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: please put your view id in %s", ErrConfigurationMissing, path)
		}
		return "", fmt.Errorf("failed to read view id file: %w", err)
	}

	viewID := strings.TrimSpace(string(data))
	if viewID == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrConfigurationMissing, path)
	}

	return viewID, nil
}

// LoadSettings reads YAML settings from path. A missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings file: %w", err)
	}

	if settings.DataDir == "" {
		settings.DataDir = DefaultDataDir
	}

	return settings, nil
}

// SaveSettings writes settings to path as YAML
func SaveSettings(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// Load resolves credentials, view ID and settings from confDir
func Load(confDir, settingsPath string) (*Exporter, error) {
	viewID, err := LoadViewID(confDir)
	if err != nil {
		return nil, err
	}

	credentials, err := FindCredentialsFile(confDir)
	if err != nil {
		return nil, err
	}

	if settingsPath == "" {
		settingsPath = filepath.Join(confDir, SettingsFileName)
	}
	settings, err := LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	return &Exporter{
		CredentialsFile: credentials,
		ViewID:          viewID,
		Settings:        settings,
	}, nil
}

// FileExists checks if a regular file exists at path
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}
