package env

import (
	"os"
	"path/filepath"
)

var Daemon bool = false

// Version is overridden by the build via -ldflags "-X dust-keeper/internal/env.Version=..."
var Version string = "dev"

// (default: %USERPROFILE%/.dust on Windows, $HOME/.dust on Linux)
var DustDir string = GetDustDir()

/**
 * Get dust home directory path
 * @returns {string} Returns dust home directory path
 */
func GetDustDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".dust")
}
