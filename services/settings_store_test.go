package services

import (
	"os"
	"path/filepath"
	"testing"

	"dust-keeper/internal/models"
)

func TestSettingsRoundtrip(t *testing.T) {
	dir := t.TempDir()
	ss := NewSettingsStore(dir)

	saved := models.VpnSettings{AutoConnectEnabled: true, DefaultConfigId: "work"}
	if err := ss.Save(saved); err != nil {
		t.Fatal(err)
	}

	loaded := ss.Load()
	if loaded != saved {
		t.Errorf("Expected %+v, got %+v", saved, loaded)
	}
}

func TestSettingsMissingFileYieldsDefaults(t *testing.T) {
	ss := NewSettingsStore(t.TempDir())
	settings := ss.Load()
	if settings.AutoConnectEnabled || settings.DefaultConfigId != "" {
		t.Errorf("Expected zero-value settings, got %+v", settings)
	}
}

func TestSettingsCorruptFileYieldsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, settingsFilename), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	settings := NewSettingsStore(dir).Load()
	if settings.AutoConnectEnabled || settings.DefaultConfigId != "" {
		t.Errorf("Corrupt file should fall back to defaults, got %+v", settings)
	}
}

func TestSettingsSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "vpn")
	ss := NewSettingsStore(dir)
	if err := ss.Save(models.VpnSettings{DefaultConfigId: "home"}); err != nil {
		t.Fatal(err)
	}
	if got := ss.Load(); got.DefaultConfigId != "home" {
		t.Errorf("Expected settings in created directory, got %+v", got)
	}
}
