package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dust-keeper/internal/logger"
	"dust-keeper/internal/models"
)

const manifestFilename = "dustgrain.json"

/**
 * ManifestStore 游戏目录内清单文件的读写
 * @description
 * - Each game folder may carry a dustgrain.json describing the game; the
 *   manifest is the source of truth the scanner merges into the catalog
 * - Writes go through a temp file rename and keep a .bak of the previous
 *   version, so a crash mid-write never loses the manifest
 */
type ManifestStore struct{}

func NewManifestStore() *ManifestStore {
	return &ManifestStore{}
}

func manifestPath(gameDir string) string {
	return filepath.Join(gameDir, manifestFilename)
}

// HasManifest reports whether the game folder carries a manifest file.
func (ms *ManifestStore) HasManifest(gameDir string) bool {
	_, err := os.Stat(manifestPath(gameDir))
	return err == nil
}

/**
 * Read the manifest of a game folder
 * @param {string} gameDir - Game folder
 * @returns {*models.Manifest} Parsed manifest
 * @returns {error} Missing file or invalid JSON
 */
func (ms *ManifestStore) Read(gameDir string) (*models.Manifest, error) {
	data, err := os.ReadFile(manifestPath(gameDir))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var manifest models.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("invalid manifest in %s: %w", gameDir, err)
	}
	if manifest.Title == "" {
		return nil, fmt.Errorf("manifest in %s has no title", gameDir)
	}
	return &manifest, nil
}

/**
 * Write the manifest of a game folder
 * @param {string} gameDir - Game folder
 * @param {*models.Manifest} manifest - Content to persist
 * @returns {error} Serialization or write error
 * @description
 * - Writes to a temp file first and renames over the target; the previous
 *   manifest is kept as dustgrain.json.bak
 */
func (ms *ManifestStore) Write(gameDir string, manifest *models.Manifest) error {
	manifest.LastModified = time.Now()

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}

	target := manifestPath(gameDir)
	if _, err := os.Stat(target); err == nil {
		if err := os.Rename(target, target+".bak"); err != nil {
			logger.Warnf("Could not back up manifest %s: %v", target, err)
		}
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to move manifest into place: %w", err)
	}
	logger.Debugf("Manifest written: %s", target)
	return nil
}

// Delete removes a folder's manifest and its backup.
func (ms *ManifestStore) Delete(gameDir string) error {
	target := manifestPath(gameDir)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete manifest: %w", err)
	}
	os.Remove(target + ".bak")
	return nil
}

// FromGame builds a manifest reflecting a catalog row.
func (ms *ManifestStore) FromGame(game *models.Game) *models.Manifest {
	return &models.Manifest{
		Title:       game.Title,
		Platform:    game.Platform,
		DlsiteId:    game.DlsiteId,
		Executable:  game.Executable,
		Description: game.Description,
		Circle:      game.Circle,
		Tags:        game.Tags,
		CoverImage:  game.CoverImage,
	}
}
