package services

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"dust-keeper/internal/config"
	"dust-keeper/internal/logger"
	"dust-keeper/internal/models"
	"dust-keeper/internal/utils"
)

/**
 * GameManager 游戏库管理门面
 * @description
 * - Coordinates the sqlite catalog, the per-folder manifests and the
 *   metadata provider
 * - The library directory on disk is the authority during a scan: folders
 *   are merged into the catalog, catalog rows whose folder vanished are
 *   removed
 */
type GameManager struct {
	store     *GameStore
	manifests *ManifestStore
	metadata  *MetadataClient
	dir       string

	mu sync.Mutex // 串行化扫描
}

var (
	gameManager     *GameManager
	gameManagerOnce sync.Once
	gameManagerErr  error
)

/**
 * GetGameManager returns the process-wide game manager singleton
 * @returns {*GameManager} Manager wired from application configuration
 * @returns {error} Catalog database open error
 */
func GetGameManager() (*GameManager, error) {
	gameManagerOnce.Do(func() {
		cfg := config.Config.Library
		store, err := OpenGameStore(cfg.Database)
		if err != nil {
			gameManagerErr = err
			return
		}
		gameManager = &GameManager{
			store:     store,
			manifests: NewManifestStore(),
			metadata:  GetMetadataClient(),
			dir:       cfg.Dir,
		}
	})
	return gameManager, gameManagerErr
}

func (gm *GameManager) ListGames() ([]models.Game, error) {
	return gm.store.ListGames()
}

func (gm *GameManager) GetGame(id int64) (*models.Game, error) {
	return gm.store.GetGame(id)
}

/**
 * ScanLibrary reconciles the catalog with the library directory
 * @returns {*models.ScanResult} Counts of scanned/added/updated/skipped folders
 * @returns {error} Library directory read error
 * @description
 * - Every subdirectory is one game. A folder with a manifest is merged
 *   from the manifest; a new folder without one gets metadata looked up
 *   by the work id in its name (best-effort) and a manifest written back
 * - Catalog rows whose folder no longer exists are deleted
 * - Individual folder failures are collected, never abort the scan
 */
func (gm *GameManager) ScanLibrary() (*models.ScanResult, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	entries, err := os.ReadDir(gm.dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warnf("Game library directory does not exist: %s", gm.dir)
			return &models.ScanResult{}, nil
		}
		return nil, fmt.Errorf("failed to read library directory: %w", err)
	}

	result := &models.ScanResult{}
	seen := map[string]bool{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folder := filepath.Join(gm.dir, entry.Name())
		result.Scanned++
		seen[folder] = true

		if err := gm.scanFolder(folder, entry.Name(), result); err != nil {
			logger.Errorf("Error scanning %s: %v", entry.Name(), err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Name(), err))
		}
	}

	// 清理磁盘上已消失的条目
	games, err := gm.store.ListGames()
	if err != nil {
		return result, err
	}
	for _, game := range games {
		if !seen[game.Folder] {
			logger.Infof("Game folder gone, removing from catalog: %s", game.Title)
			if err := gm.store.DeleteGame(game.Id); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("remove %s: %v", game.Title, err))
			}
		}
	}

	logger.Infof("Library scan done: %d scanned, %d added, %d updated, %d skipped",
		result.Scanned, result.Added, result.Updated, result.Skipped)
	return result, nil
}

func (gm *GameManager) scanFolder(folder, name string, result *models.ScanResult) error {
	existing, err := gm.store.GetGameByFolder(folder)
	if err != nil {
		return err
	}

	if gm.manifests.HasManifest(folder) {
		manifest, err := gm.manifests.Read(folder)
		if err != nil {
			return err
		}
		if existing == nil {
			game := gameFromManifest(folder, manifest)
			if err := gm.store.AddGame(game); err != nil {
				return err
			}
			result.Added++
		} else if applyManifest(existing, manifest) {
			if err := gm.store.UpdateGame(existing); err != nil {
				return err
			}
			result.Updated++
		} else {
			result.Skipped++
		}
		return nil
	}

	if existing != nil {
		result.Skipped++
		return nil
	}

	// 新目录且无清单：按目录名解析作品编号，元数据查询失败不阻塞入库
	game := &models.Game{
		Title:    name,
		Platform: "local",
		Folder:   folder,
	}
	if workId := ExtractWorkID(name); workId != "" {
		game.Platform = "dlsite"
		game.DlsiteId = workId
		if info, err := gm.metadata.FetchWork(workId); err == nil {
			game.Title = info.Title
			game.Circle = info.Circle
			game.Description = info.Description
			game.Tags = info.Tags
			game.CoverImage = info.CoverImage
		} else {
			logger.Warnf("Metadata lookup for %s failed: %v", workId, err)
		}
	}
	if candidates := utils.FindExecutables(folder); len(candidates) > 0 {
		rel, err := filepath.Rel(folder, candidates[0])
		if err == nil {
			game.Executable = rel
		}
	}

	if err := gm.store.AddGame(game); err != nil {
		return err
	}
	if err := gm.manifests.Write(folder, gm.manifests.FromGame(game)); err != nil {
		logger.Warnf("Could not write manifest for %s: %v", name, err)
	}
	result.Added++
	return nil
}

func gameFromManifest(folder string, manifest *models.Manifest) *models.Game {
	platform := manifest.Platform
	if platform == "" {
		platform = "local"
	}
	return &models.Game{
		Title:       manifest.Title,
		Platform:    platform,
		DlsiteId:    manifest.DlsiteId,
		Folder:      folder,
		Executable:  manifest.Executable,
		Description: manifest.Description,
		Circle:      manifest.Circle,
		Tags:        manifest.Tags,
		CoverImage:  manifest.CoverImage,
	}
}

// applyManifest 把清单内容合并到目录条目，返回是否有变化
func applyManifest(game *models.Game, manifest *models.Manifest) bool {
	changed := false
	if manifest.Title != "" && game.Title != manifest.Title {
		game.Title = manifest.Title
		changed = true
	}
	if manifest.Executable != "" && game.Executable != manifest.Executable {
		game.Executable = manifest.Executable
		changed = true
	}
	if manifest.DlsiteId != "" && game.DlsiteId != manifest.DlsiteId {
		game.DlsiteId = manifest.DlsiteId
		changed = true
	}
	if manifest.Description != "" && game.Description != manifest.Description {
		game.Description = manifest.Description
		changed = true
	}
	if manifest.Circle != "" && game.Circle != manifest.Circle {
		game.Circle = manifest.Circle
		changed = true
	}
	if manifest.CoverImage != "" && game.CoverImage != manifest.CoverImage {
		game.CoverImage = manifest.CoverImage
		changed = true
	}
	if len(manifest.Tags) > 0 && !equalTags(game.Tags, manifest.Tags) {
		game.Tags = manifest.Tags
		changed = true
	}
	return changed
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

/**
 * AddGame registers a folder in the catalog manually
 * @param {*models.Game} game - Entry to add, Folder must exist on disk
 * @returns {error} Missing folder, duplicate folder or persistence error
 * @description
 * - Fills title from the folder name and the executable from discovery
 *   when the caller left them empty, then writes the folder manifest
 */
func (gm *GameManager) AddGame(game *models.Game) error {
	info, err := os.Stat(game.Folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("game folder does not exist: %s", game.Folder)
	}
	if game.Title == "" {
		game.Title = filepath.Base(game.Folder)
	}
	if game.Platform == "" {
		game.Platform = "local"
	}
	if game.Executable == "" {
		if candidates := utils.FindExecutables(game.Folder); len(candidates) > 0 {
			if rel, rerr := filepath.Rel(game.Folder, candidates[0]); rerr == nil {
				game.Executable = rel
			}
		}
	}
	if err := gm.store.AddGame(game); err != nil {
		return err
	}
	if err := gm.manifests.Write(game.Folder, gm.manifests.FromGame(game)); err != nil {
		logger.Warnf("Could not write manifest for %s: %v", game.Title, err)
	}
	return nil
}

// FindByWorkID resolves a catalog entry by provider work id.
func (gm *GameManager) FindByWorkID(workId string) (*models.Game, error) {
	return gm.store.FindByDlsiteID(workId)
}

/**
 * UpdateGame applies edits to a catalog row and syncs the manifest
 * @param {*models.Game} game - Row with edits, Id must be set
 * @returns {error} Unknown id or persistence error
 */
func (gm *GameManager) UpdateGame(game *models.Game) error {
	if _, err := gm.store.GetGame(game.Id); err != nil {
		return err
	}
	if err := gm.store.UpdateGame(game); err != nil {
		return err
	}
	if err := gm.manifests.Write(game.Folder, gm.manifests.FromGame(game)); err != nil {
		logger.Warnf("Could not sync manifest for %s: %v", game.Title, err)
	}
	return nil
}

// DeleteGame removes a catalog row; game files stay on disk.
func (gm *GameManager) DeleteGame(id int64) error {
	return gm.store.DeleteGame(id)
}

/**
 * Launch starts the game's executable in its own folder
 * @param {int64} id - Catalog row id
 * @returns {*models.LaunchResult} Pid of the started process on success
 * @description
 * - Falls back to executable discovery when the row has no stored target
 * - The game process is started detached: it outlives this process
 */
func (gm *GameManager) Launch(id int64) *models.LaunchResult {
	game, err := gm.store.GetGame(id)
	if err != nil {
		return &models.LaunchResult{Success: false, Message: err.Error()}
	}

	target := game.Executable
	if target == "" {
		candidates := utils.FindExecutables(game.Folder)
		if len(candidates) == 0 {
			GetMetricsService().RecordGameLaunch(false)
			return &models.LaunchResult{Success: false, Message: "no executable found in " + game.Folder}
		}
		rel, rerr := filepath.Rel(game.Folder, candidates[0])
		if rerr != nil {
			rel = candidates[0]
		}
		target = rel
		game.Executable = target
		if err := gm.store.UpdateGame(game); err != nil {
			logger.Warnf("Could not store discovered executable for %s: %v", game.Title, err)
		}
	}

	path := target
	if !filepath.IsAbs(path) {
		path = filepath.Join(game.Folder, target)
	}
	if _, err := os.Stat(path); err != nil {
		GetMetricsService().RecordGameLaunch(false)
		return &models.LaunchResult{Success: false, Message: "executable does not exist: " + path}
	}

	cmd := exec.Command(path)
	cmd.Dir = game.Folder
	if err := cmd.Start(); err != nil {
		GetMetricsService().RecordGameLaunch(false)
		return &models.LaunchResult{Success: false, Message: fmt.Sprintf("failed to start %s: %v", game.Title, err)}
	}
	pid := cmd.Process.Pid
	// 游戏进程独立存活，Release后不再跟踪
	if err := cmd.Process.Release(); err != nil {
		logger.Warnf("Could not release game process %d: %v", pid, err)
	}

	if err := gm.store.RecordPlay(id); err != nil {
		logger.Warnf("Could not record play for %s: %v", game.Title, err)
	}
	GetMetricsService().RecordGameLaunch(true)
	logger.Infof("Game launched: %s (PID: %d)", game.Title, pid)
	return &models.LaunchResult{Success: true, Message: "launched " + game.Title, Pid: pid}
}
