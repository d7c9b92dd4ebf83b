package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// 各平台的可执行文件扩展名
var executableExtensions = map[string][]string{
	"windows": {".exe", ".bat", ".cmd"},
	"linux":   {".sh", ".run", ".AppImage", ".x86_64"},
	"darwin":  {".app", ".sh"},
	"all":     {".jar"},
}

/**
 * Find launchable executables inside a game directory
 * @param {string} dir - Directory to search (two levels deep)
 * @returns {[]string} Candidate paths ordered by launch priority
 * @description
 * - Matches by platform extension; on Unix also accepts files with the exec bit set
 * - Prefers files named after the directory, then "game"/"start" stems
 * - Penalizes uninstallers, config tools and redistributable installers
 */
func FindExecutables(dir string) []string {
	var candidates []string

	exts := append([]string{}, executableExtensions["all"]...)
	if platformExts, ok := executableExtensions[runtime.GOOS]; ok {
		exts = append(exts, platformExts...)
	}

	base := filepath.Base(dir)
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			// 只搜索两层目录
			rel, rerr := filepath.Rel(dir, path)
			if rerr == nil && strings.Count(rel, string(filepath.Separator)) >= 2 {
				return filepath.SkipDir
			}
			return nil
		}
		if isExecutableFile(path, info, exts) {
			candidates = append(candidates, path)
		}
		return nil
	})

	sort.SliceStable(candidates, func(i, j int) bool {
		return executablePriority(candidates[i], base) < executablePriority(candidates[j], base)
	})
	return candidates
}

func isExecutableFile(path string, info os.FileInfo, exts []string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range exts {
		if strings.HasSuffix(name, strings.ToLower(ext)) {
			return true
		}
	}
	if runtime.GOOS != "windows" && info.Mode()&0111 != 0 && !strings.Contains(name, ".") {
		return true
	}
	return false
}

// executablePriority 数值越小优先级越高
func executablePriority(path, dirName string) int {
	name := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

	switch {
	case strings.Contains(name, "unins"), strings.Contains(name, "uninstall"),
		strings.Contains(name, "vcredist"), strings.Contains(name, "dxsetup"),
		strings.Contains(name, "setup"), strings.Contains(name, "config"):
		return 100
	case name == strings.ToLower(dirName):
		return 0
	case name == "game" || name == "start" || name == "launch":
		return 1
	case strings.HasPrefix(name, "game"):
		return 2
	default:
		return 10
	}
}
