package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dust-keeper/internal/logger"
	"dust-keeper/internal/models"
)

const configExtension = ".ovpn"

/**
 * ConfigStore 隧道配置文件仓库
 * @description
 * - Discovers .ovpn files in the config directory and parses the key
 *   directives (remote host, port, protocol) best-effort
 * - A file that fails parsing is still listed with its ParseError set:
 *   discovery never silently drops a file
 */
type ConfigStore struct {
	dir string
}

func NewConfigStore(dir string) *ConfigStore {
	return &ConfigStore{dir: dir}
}

func (cs *ConfigStore) Dir() string {
	return cs.dir
}

/**
 * List all tunnel configs in the store directory
 * @returns {[]models.TunnelConfig} One record per .ovpn file, parse failures included
 * @returns {error} Directory read error; a missing directory yields an empty list
 */
func (cs *ConfigStore) ListConfigs() ([]models.TunnelConfig, error) {
	entries, err := os.ReadDir(cs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warnf("VPN config directory does not exist: %s", cs.dir)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []models.TunnelConfig
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), configExtension) {
			continue
		}
		path := filepath.Join(cs.dir, name)
		cfg, perr := parseConfigFile(path)
		cfg.Id = strings.TrimSuffix(name, filepath.Ext(name))
		cfg.Filename = name
		cfg.Path = path
		if perr != nil {
			// 解析失败的文件仍然返回，只附带错误说明
			logger.Warnf("Error parsing config file %s: %v", name, perr)
			cfg.ParseError = perr.Error()
		}
		configs = append(configs, cfg)
	}
	logger.Infof("Found %d VPN configuration files in %s", len(configs), cs.dir)
	return configs, nil
}

/**
 * Get resolves a config reference to a discovered config
 * @param {string} ref - Config id (filename without extension) or filename
 * @returns {*models.TunnelConfig} The matching record
 * @returns {*VpnError} vpn.config_not_found when no file matches
 */
func (cs *ConfigStore) Get(ref string) (*models.TunnelConfig, *VpnError) {
	configs, err := cs.ListConfigs()
	if err != nil {
		return nil, wrapVpnError(CodeConfigNotFound, err, "failed to list configs")
	}
	for i := range configs {
		if configs[i].Id == ref || configs[i].Filename == ref {
			return &configs[i], nil
		}
	}
	return nil, newVpnError(CodeConfigNotFound, "VPN configuration not found: %s", ref)
}

/**
 * Validate rejects configs that cannot possibly connect
 * @param {*models.TunnelConfig} cfg - Config to check
 * @returns {*VpnError} vpn.config_invalid when the remote directive is missing
 * @description
 * - Runs before any process is spawned; a config without a remote endpoint
 *   never reaches the supervisor
 */
func (cs *ConfigStore) Validate(cfg *models.TunnelConfig) *VpnError {
	if cfg.ParseError != "" {
		return newVpnError(CodeConfigInvalid, "config %s could not be parsed: %s", cfg.Filename, cfg.ParseError)
	}
	if cfg.RemoteHost == "" {
		return newVpnError(CodeConfigInvalid, "config %s has no remote endpoint directive", cfg.Filename)
	}
	return nil
}

/**
 * parseConfigFile extracts key directives from an OpenVPN config
 * @description
 * - Understands "remote <host> [port] [proto]", "port", "proto" and skips
 *   comments (# and ;) and unknown lines
 * - Tolerant by design: the file format allows hundreds of directives and
 *   only the remote endpoint matters for display and validation
 */
func parseConfigFile(path string) (models.TunnelConfig, error) {
	var cfg models.TunnelConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		switch strings.ToLower(parts[0]) {
		case "remote":
			cfg.RemoteHost = parts[1]
			if len(parts) > 2 {
				if port, perr := strconv.Atoi(parts[2]); perr == nil {
					cfg.RemotePort = port
				}
				if len(parts) > 3 {
					cfg.Protocol = strings.ToLower(parts[3])
				}
			}
		case "port":
			if port, perr := strconv.Atoi(parts[1]); perr == nil && cfg.RemotePort == 0 {
				cfg.RemotePort = port
			}
		case "proto":
			if cfg.Protocol == "" {
				cfg.Protocol = strings.ToLower(parts[1])
			}
		}
	}
	return cfg, nil
}
