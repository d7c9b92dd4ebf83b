package models

/**
 * TunnelConfig 隧道配置文件信息
 * @property {string} id - Config identifier (filename without extension)
 * @property {string} filename - File name inside the config directory
 * @property {string} path - Absolute path of the config file
 * @property {string} remoteHost - Remote endpoint host from the "remote" directive
 * @property {int} remotePort - Remote endpoint port
 * @property {string} protocol - Transport protocol (udp/tcp)
 * @property {string} parseError - Non-empty when directive parsing failed; the record is still listed
 */
type TunnelConfig struct {
	Id         string `json:"id"`
	Filename   string `json:"filename"`
	Path       string `json:"path"`
	RemoteHost string `json:"remoteHost,omitempty"`
	RemotePort int    `json:"remotePort,omitempty"`
	Protocol   string `json:"protocol,omitempty"`
	ParseError string `json:"parseError,omitempty"`
}

// VpnSettings 持久化的VPN策略设置
type VpnSettings struct {
	AutoConnectEnabled bool   `json:"autoConnectEnabled"`
	DefaultConfigId    string `json:"defaultConfigId,omitempty"`
}

/**
 * VpnStatus is a read-only projection of the current session. It is built
 * from copied fields, never from the live session itself.
 */
type VpnStatus struct {
	Connected           bool   `json:"connected"`
	State               string `json:"state"`
	ConfigId            string `json:"configId,omitempty"`
	DurationSeconds     int64  `json:"durationSeconds"`
	ProcessAlive        bool   `json:"processAlive"`
	ManagementReachable bool   `json:"managementReachable"`
	AutoConnectEnabled  bool   `json:"autoConnectEnabled"`
}

// ConnectRequest VPN连接请求
type ConnectRequest struct {
	Config string `json:"config"`
	Force  bool   `json:"force"`
}

// ConnectResult VPN连接操作结果
type ConnectResult struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	AlreadyConnected bool   `json:"alreadyConnected,omitempty"`
	ConfigId         string `json:"configId,omitempty"`
	Code             string `json:"code,omitempty"`
}

// DisconnectResult VPN断开操作结果
type DisconnectResult struct {
	Success             bool   `json:"success"`
	Message             string `json:"message"`
	AlreadyDisconnected bool   `json:"alreadyDisconnected,omitempty"`
}

// StatusDetail 状态变化通知的附加信息
type StatusDetail struct {
	Connected       bool   `json:"connected"`
	Reason          string `json:"reason,omitempty"`
	ConfigId        string `json:"configId,omitempty"`
	DurationSeconds int64  `json:"durationSeconds,omitempty"`
}

// SettingsRequest 设置更新请求，nil字段表示保持不变
type SettingsRequest struct {
	AutoConnectEnabled *bool   `json:"autoConnectEnabled,omitempty"`
	DefaultConfigId    *string `json:"defaultConfigId,omitempty"`
}
