package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dust-keeper/internal/logger"
	"dust-keeper/internal/models"
)

const settingsFilename = "vpn_settings.json"

/**
 * SettingsStore VPN策略设置的持久化仓库
 * @description
 * - Persists {autoConnectEnabled, defaultConfigId} as JSON next to the
 *   tunnel config directory
 * - Loaded at startup, rewritten on every settings change
 */
type SettingsStore struct {
	dir string
}

func NewSettingsStore(dir string) *SettingsStore {
	return &SettingsStore{dir: dir}
}

func (ss *SettingsStore) path() string {
	return filepath.Join(ss.dir, settingsFilename)
}

/**
 * Load settings from disk
 * @returns {models.VpnSettings} Stored settings, zero value when the file is absent
 * @description
 * - A missing or corrupt settings file is not an error: defaults apply and
 *   the next Save rewrites the file
 */
func (ss *SettingsStore) Load() models.VpnSettings {
	var settings models.VpnSettings

	data, err := os.ReadFile(ss.path())
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Errorf("Error loading VPN settings: %v", err)
		}
		return settings
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		logger.Errorf("Invalid VPN settings file, using defaults: %v", err)
		return models.VpnSettings{}
	}
	return settings
}

/**
 * Save settings to disk
 * @param {models.VpnSettings} settings - Settings to persist
 * @returns {error} Directory creation or write error
 */
func (ss *SettingsStore) Save(settings models.VpnSettings) error {
	if err := os.MkdirAll(ss.dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	if err := os.WriteFile(ss.path(), data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	logger.Debug("VPN settings saved")
	return nil
}
