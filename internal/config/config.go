package config

import (
	"path/filepath"

	"github.com/spf13/viper"

	"dust-keeper/internal/env"
)

/**
 * Server configuration parameters
 * @property {string} address - Server listening address (e.g. "127.0.0.1:9420")
 * @property {string} mode - Gin mode (debug/release/test)
 */
type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"`
}

/**
 * Logging configuration
 * @property {string} level - Log level (debug/info/warn/error)
 * @property {string} path - Log file path, "console" for stdout only
 */
type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

/**
 * VPN tunnel manager configuration
 * @property {string} config_dir - Directory holding .ovpn tunnel definitions
 * @property {string} binary_path - Explicit tunnel client binary path (optional, search is skipped when set)
 * @property {string} management_host - Local management interface host
 * @property {int} management_port - Local management interface port
 * @property {int} connect_timeout_sec - Establishment timeout
 * @property {int} grace_period_sec - Graceful-terminate window before force kill
 * @property {int} monitor_interval_sec - Liveness check cadence while connected
 * @property {int} probe_every_ticks - Reachability probe runs every N monitor ticks
 * @property {[]string} echo_endpoints - Ordered public IP echo services
 * @property {[]string} probe_hosts - TCP endpoints for generic reachability checks
 */
type VpnConfig struct {
	ConfigDir          string   `mapstructure:"config_dir"`
	BinaryPath         string   `mapstructure:"binary_path"`
	ManagementHost     string   `mapstructure:"management_host"`
	ManagementPort     int      `mapstructure:"management_port"`
	ConnectTimeoutSec  int      `mapstructure:"connect_timeout_sec"`
	GracePeriodSec     int      `mapstructure:"grace_period_sec"`
	MonitorIntervalSec int      `mapstructure:"monitor_interval_sec"`
	ProbeEveryTicks    int      `mapstructure:"probe_every_ticks"`
	EchoEndpoints      []string `mapstructure:"echo_endpoints"`
	ProbeHosts         []string `mapstructure:"probe_hosts"`
}

/**
 * Game library configuration
 * @property {string} dir - Root directory scanned for game folders
 * @property {string} database - Path of the sqlite catalog file
 */
type LibraryConfig struct {
	Dir      string `mapstructure:"dir"`
	Database string `mapstructure:"database"`
}

/**
 * Metadata provider configuration
 * @property {string} base_url - Product info endpoint of the provider
 * @property {string} locale - Preferred locale for titles/descriptions
 * @property {int} timeout_sec - HTTP timeout for lookups
 */
type MetadataConfig struct {
	BaseUrl    string `mapstructure:"base_url"`
	Locale     string `mapstructure:"locale"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Vpn      VpnConfig      `mapstructure:"vpn"`
	Library  LibraryConfig  `mapstructure:"library"`
	Metadata MetadataConfig `mapstructure:"metadata"`
}

/**
 * Load application configuration from YAML file
 * @returns {*AppConfig} Parsed configuration
 * @returns {error} Read or unmarshal error
 * @description
 * - Looks for config.yaml in the working directory and in ~/.dust
 * - Missing file is not fatal, defaults are applied by collectConfig
 */
func LoadConfig() (*AppConfig, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(env.DustDir)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var Config AppConfig

func collectConfig(cfg *AppConfig) *AppConfig {
	if cfg.Server.Address == "" {
		cfg.Server.Address = "127.0.0.1:9420"
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Vpn.ConfigDir == "" {
		cfg.Vpn.ConfigDir = filepath.Join(env.DustDir, "vpn")
	}
	if cfg.Vpn.ManagementHost == "" {
		cfg.Vpn.ManagementHost = "127.0.0.1"
	}
	if cfg.Vpn.ManagementPort == 0 {
		cfg.Vpn.ManagementPort = 7505
	}
	if cfg.Vpn.ConnectTimeoutSec == 0 {
		cfg.Vpn.ConnectTimeoutSec = 45
	}
	if cfg.Vpn.GracePeriodSec == 0 {
		cfg.Vpn.GracePeriodSec = 10
	}
	if cfg.Vpn.MonitorIntervalSec == 0 {
		cfg.Vpn.MonitorIntervalSec = 5
	}
	if cfg.Vpn.ProbeEveryTicks == 0 {
		cfg.Vpn.ProbeEveryTicks = 6
	}
	if len(cfg.Vpn.EchoEndpoints) == 0 {
		cfg.Vpn.EchoEndpoints = []string{
			"https://ipinfo.io/ip",
			"https://api.ipify.org",
			"https://checkip.amazonaws.com",
		}
	}
	if len(cfg.Vpn.ProbeHosts) == 0 {
		cfg.Vpn.ProbeHosts = []string{
			"8.8.8.8:53",
			"1.1.1.1:53",
			"208.67.222.222:53",
		}
	}
	if cfg.Library.Dir == "" {
		cfg.Library.Dir = filepath.Join(env.DustDir, "games")
	}
	if cfg.Library.Database == "" {
		cfg.Library.Database = filepath.Join(env.DustDir, "dust.db")
	}
	if cfg.Metadata.BaseUrl == "" {
		cfg.Metadata.BaseUrl = "https://www.dlsite.com/maniax/api/=/product.json"
	}
	if cfg.Metadata.Locale == "" {
		cfg.Metadata.Locale = "en_US"
	}
	if cfg.Metadata.TimeoutSec == 0 {
		cfg.Metadata.TimeoutSec = 15
	}
	return cfg
}

/**
 * Reload configuration from disk
 * @returns {error} Read error, previous configuration is kept on failure
 */
func ReloadConfig() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	Config = *cfg
	collectConfig(&Config)
	return nil
}

func init() {
	cfg, err := LoadConfig()
	if err == nil {
		Config = *cfg
	}
	collectConfig(&Config)
}
