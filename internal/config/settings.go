package config

import (
	apperrors "github.com/cfdshell/cfdshell/internal/errors"
	"github.com/cfdshell/cfdshell/internal/models"
)

// LoadSettings loads the global settings from ~/.cfdshell/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	settings, err := LoadYAMLOrDefault(path, models.NewSettings)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeConfigInvalid, "config.LoadSettings", "cannot load "+path, err)
	}
	settings.ApplyDefaults()
	return settings, nil
}

// SaveSettings saves the global settings to ~/.cfdshell/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}
