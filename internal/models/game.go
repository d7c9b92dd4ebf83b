package models

import "time"

/**
 * Game 游戏目录条目
 * @property {int64} id - Catalog row id
 * @property {string} title - Display title
 * @property {string} platform - Source platform (dlsite/local)
 * @property {string} dlsiteId - Provider work id (RJ123456...), empty for local games
 * @property {string} folder - Game folder on disk
 * @property {string} executable - Launch target inside the folder
 */
type Game struct {
	Id          int64     `json:"id"`
	Title       string    `json:"title"`
	Platform    string    `json:"platform"`
	DlsiteId    string    `json:"dlsiteId,omitempty"`
	Folder      string    `json:"folder"`
	Executable  string    `json:"executable,omitempty"`
	CoverImage  string    `json:"coverImage,omitempty"`
	Description string    `json:"description,omitempty"`
	Circle      string    `json:"circle,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	PlayCount   int       `json:"playCount"`
	LastPlayed  time.Time `json:"lastPlayed,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Manifest dustgrain.json游戏目录清单文件
type Manifest struct {
	Title        string    `json:"title"`
	Platform     string    `json:"platform"`
	DlsiteId     string    `json:"dlsiteId,omitempty"`
	Executable   string    `json:"executable,omitempty"`
	Description  string    `json:"description,omitempty"`
	Circle       string    `json:"circle,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	CoverImage   string    `json:"coverImage,omitempty"`
	LastModified time.Time `json:"lastModified,omitempty"`
}

// GameInfo 元数据提供商返回的作品信息
type GameInfo struct {
	DlsiteId    string   `json:"dlsiteId"`
	Title       string   `json:"title"`
	Circle      string   `json:"circle,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CoverImage  string   `json:"coverImage,omitempty"`
}

// ScanResult 扫描游戏库的统计结果
type ScanResult struct {
	Scanned int      `json:"scanned"`
	Added   int      `json:"added"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// LaunchResult 启动游戏的结果
type LaunchResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Pid     int    `json:"pid,omitempty"`
}
