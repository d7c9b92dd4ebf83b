package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"dust-keeper/internal/logger"
	"dust-keeper/internal/models"
)

const gameSchema = `
CREATE TABLE IF NOT EXISTS games (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	platform TEXT NOT NULL DEFAULT 'local',
	dlsite_id TEXT,
	folder TEXT NOT NULL UNIQUE,
	executable TEXT,
	cover_image TEXT,
	description TEXT,
	circle TEXT,
	tags TEXT,
	play_count INTEGER NOT NULL DEFAULT 0,
	last_played TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_games_dlsite_id ON games(dlsite_id);
`

/**
 * GameStore 游戏目录的sqlite仓库
 * @description
 * - One row per game folder; the folder path is the natural key
 * - Tags are stored as a JSON array in a TEXT column
 */
type GameStore struct {
	db *sql.DB
}

/**
 * Open the catalog database, creating file and schema when missing
 * @param {string} path - Database file path
 * @returns {*GameStore} Ready store
 * @returns {error} Open or migration error
 */
func OpenGameStore(path string) (*GameStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(gameSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Infof("Game catalog opened: %s", path)
	return &GameStore{db: db}, nil
}

func (gs *GameStore) Close() error {
	return gs.db.Close()
}

const gameColumns = `id, title, platform, dlsite_id, folder, executable, cover_image,
	description, circle, tags, play_count, last_played, created_at, updated_at`

func scanGame(row interface{ Scan(...interface{}) error }) (*models.Game, error) {
	var g models.Game
	var dlsiteId, executable, coverImage, description, circle, tags sql.NullString
	var lastPlayed sql.NullTime

	err := row.Scan(&g.Id, &g.Title, &g.Platform, &dlsiteId, &g.Folder, &executable,
		&coverImage, &description, &circle, &tags, &g.PlayCount, &lastPlayed,
		&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.DlsiteId = dlsiteId.String
	g.Executable = executable.String
	g.CoverImage = coverImage.String
	g.Description = description.String
	g.Circle = circle.String
	if lastPlayed.Valid {
		g.LastPlayed = lastPlayed.Time
	}
	if tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &g.Tags); err != nil {
			logger.Warnf("Invalid tags JSON for game %d: %v", g.Id, err)
		}
	}
	return &g, nil
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	return string(data)
}

// ListGames returns the full catalog ordered by title.
func (gs *GameStore) ListGames() ([]models.Game, error) {
	rows, err := gs.db.Query(`SELECT ` + gameColumns + ` FROM games ORDER BY title COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

// GetGame fetches one game by row id.
func (gs *GameStore) GetGame(id int64) (*models.Game, error) {
	row := gs.db.QueryRow(`SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("game %d not found", id)
	}
	return g, err
}

// FindByDlsiteID fetches one game by provider work id, nil when unknown.
func (gs *GameStore) FindByDlsiteID(workId string) (*models.Game, error) {
	row := gs.db.QueryRow(`SELECT `+gameColumns+` FROM games WHERE dlsite_id = ?`, workId)
	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return g, err
}

// GetGameByFolder fetches one game by its folder path.
func (gs *GameStore) GetGameByFolder(folder string) (*models.Game, error) {
	row := gs.db.QueryRow(`SELECT `+gameColumns+` FROM games WHERE folder = ?`, folder)
	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return g, err
}

/**
 * AddGame inserts a new catalog row
 * @param {*models.Game} game - Row to insert, Id/CreatedAt/UpdatedAt are set by the store
 * @returns {error} Insert error, including unique-folder violations
 */
func (gs *GameStore) AddGame(game *models.Game) error {
	now := time.Now()
	game.CreatedAt = now
	game.UpdatedAt = now

	result, err := gs.db.Exec(`INSERT INTO games
		(title, platform, dlsite_id, folder, executable, cover_image, description, circle, tags, play_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		game.Title, game.Platform, game.DlsiteId, game.Folder, game.Executable,
		game.CoverImage, game.Description, game.Circle, encodeTags(game.Tags),
		game.CreatedAt, game.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	game.Id, _ = result.LastInsertId()
	logger.Infof("Game added to catalog: %s (id=%d)", game.Title, game.Id)
	return nil
}

// UpdateGame rewrites every mutable column of an existing row.
func (gs *GameStore) UpdateGame(game *models.Game) error {
	game.UpdatedAt = time.Now()
	_, err := gs.db.Exec(`UPDATE games SET
		title = ?, platform = ?, dlsite_id = ?, folder = ?, executable = ?,
		cover_image = ?, description = ?, circle = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		game.Title, game.Platform, game.DlsiteId, game.Folder, game.Executable,
		game.CoverImage, game.Description, game.Circle, encodeTags(game.Tags),
		game.UpdatedAt, game.Id)
	if err != nil {
		return fmt.Errorf("failed to update game %d: %w", game.Id, err)
	}
	return nil
}

// DeleteGame removes a catalog row. Files on disk are never touched.
func (gs *GameStore) DeleteGame(id int64) error {
	result, err := gs.db.Exec(`DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game %d: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("game %d not found", id)
	}
	return nil
}

// RecordPlay bumps the play counter and the last-played timestamp.
func (gs *GameStore) RecordPlay(id int64) error {
	_, err := gs.db.Exec(`UPDATE games SET play_count = play_count + 1, last_played = ?, updated_at = ? WHERE id = ?`,
		time.Now(), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to record play for game %d: %w", id, err)
	}
	return nil
}
