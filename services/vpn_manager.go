package services

import (
	"sync"
	"time"

	"dust-keeper/internal/config"
	"dust-keeper/internal/logger"
	"dust-keeper/internal/models"
	"dust-keeper/internal/utils"
)

// ConnectionState 连接生命周期状态
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateDisconnecting
	StateFailed
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	case StateFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

/**
 * VpnManager VPN连接管理门面
 * @description
 * - Single entry point for connect/disconnect/status/settings; owns the
 *   only Session reference and the monitor attached to it
 * - opMu serializes connect and disconnect: a request arriving during an
 *   in-flight attempt queues behind it instead of failing. mu only guards
 *   short field reads and writes, so status queries never wait on an
 *   in-flight establish or teardown
 * - Status change subscribers are invoked outside both locks so a slow
 *   subscriber can never stall a connect
 */
type VpnManager struct {
	configs     *ConfigStore
	settings    *SettingsStore
	sup         *ProcessSupervisor
	verifier    connectivityChecker
	establisher *ConnectionEstablisher

	monitorInterval time.Duration
	probeEveryTicks int
	gracePeriod     time.Duration

	opMu sync.Mutex // 串行化connect/disconnect，期间不持有mu

	mu      sync.Mutex
	state   ConnectionState
	session *Session
	monitor *ConnectionMonitor

	subMu       sync.Mutex
	subscribers []func(models.StatusDetail)
}

var (
	vpnManager     *VpnManager
	vpnManagerOnce sync.Once
)

/**
 * GetVpnManager returns the process-wide VPN manager singleton
 * @returns {*VpnManager} Manager wired from application configuration
 */
func GetVpnManager() *VpnManager {
	vpnManagerOnce.Do(func() {
		cfg := config.Config.Vpn
		configs := NewConfigStore(cfg.ConfigDir)
		sup := NewProcessSupervisor(cfg.BinaryPath)
		verifier := NewConnectivityVerifier(cfg.EchoEndpoints, cfg.ProbeHosts)
		establisher := NewConnectionEstablisher(configs, sup, verifier, cfg.ManagementHost, cfg.ManagementPort)
		establisher.Timeout = time.Duration(cfg.ConnectTimeoutSec) * time.Second
		establisher.GracePeriod = time.Duration(cfg.GracePeriodSec) * time.Second

		vpnManager = &VpnManager{
			configs:         configs,
			settings:        NewSettingsStore(cfg.ConfigDir),
			sup:             sup,
			verifier:        verifier,
			establisher:     establisher,
			monitorInterval: time.Duration(cfg.MonitorIntervalSec) * time.Second,
			probeEveryTicks: cfg.ProbeEveryTicks,
			gracePeriod:     time.Duration(cfg.GracePeriodSec) * time.Second,
		}
	})
	return vpnManager
}

// Subscribe registers a callback fired on every connection status change.
func (vm *VpnManager) Subscribe(fn func(models.StatusDetail)) {
	vm.subMu.Lock()
	defer vm.subMu.Unlock()
	vm.subscribers = append(vm.subscribers, fn)
}

// notify 在锁外调用订阅者，慢订阅者不会阻塞连接操作
func (vm *VpnManager) notify(detail models.StatusDetail) {
	vm.subMu.Lock()
	subs := make([]func(models.StatusDetail), len(vm.subscribers))
	copy(subs, vm.subscribers)
	vm.subMu.Unlock()

	for _, fn := range subs {
		fn(detail)
	}
}

// ListConfigs returns every tunnel definition found in the config directory.
func (vm *VpnManager) ListConfigs() ([]models.TunnelConfig, error) {
	return vm.configs.ListConfigs()
}

/**
 * Connect establishes a VPN connection using the referenced config
 * @param {string} ref - Config id or filename; empty means the stored default
 * @param {bool} force - Reconnect even when the same config is already up
 * @returns {*models.ConnectResult} Outcome with failure class code on error
 * @description
 * - Serialized with every other connect/disconnect; a caller arriving
 *   mid-attempt waits for the attempt to finish. Status queries keep
 *   working throughout: the establish runs without holding mu
 * - "Already connected" is only reported after the existing session has
 *   been re-verified (process alive, egress still differs from the
 *   session baseline); a dead session found this way is cleaned up and
 *   replaced
 * - On success the config becomes the stored default
 */
func (vm *VpnManager) Connect(ref string, force bool) *models.ConnectResult {
	vm.opMu.Lock()
	defer vm.opMu.Unlock()

	stored := vm.settings.Load()
	if ref == "" {
		ref = stored.DefaultConfigId
	}
	if ref == "" {
		return connectFailure(newVpnError(CodeConfigNotFound, "no config specified and no default config stored"))
	}

	cfg, verr := vm.configs.Get(ref)
	if verr != nil {
		return connectFailure(verr)
	}

	vm.mu.Lock()
	current := vm.session
	vm.mu.Unlock()

	if current != nil && current.Config.Id == cfg.Id && !force {
		// 复核出口仍走隧道。网络探测在锁外进行
		if vm.sup.IsAlive(current.Process) && vm.verifier.Verify(current.BaselineEgressIP) {
			return &models.ConnectResult{
				Success:          true,
				AlreadyConnected: true,
				ConfigId:         cfg.Id,
				Message:          "already connected to " + cfg.Id,
			}
		}
		logger.Warn("Existing session failed re-verification, reconnecting")
	}

	if sess, mon := vm.detachSession(StateConnecting); sess != nil {
		vm.teardown(sess, mon, "replaced by new connect")
	}
	logger.Infof("Connecting to VPN using config %s", cfg.Id)

	session, verr := vm.establisher.Establish(cfg)
	if verr != nil {
		vm.setState(StateFailed)
		if verr.Fatal() {
			logger.Errorf("VPN connect failed fatally: %v", verr)
		} else {
			logger.Errorf("VPN connect failed: %v", verr)
		}
		GetMetricsService().RecordVpnConnect(false)
		return connectFailure(verr)
	}

	monitor := NewConnectionMonitor(vm.sup, vm.verifier, vm.monitorInterval, vm.probeEveryTicks)
	vm.mu.Lock()
	vm.session = session
	vm.monitor = monitor
	vm.state = StateConnected
	vm.mu.Unlock()
	// 回调绑定到本次会话，重连后迟到的旧回调会被忽略
	monitor.Start(session.Process, func(reason string) {
		vm.handleConnectionDown(session, reason)
	})

	stored.DefaultConfigId = cfg.Id
	if err := vm.settings.Save(stored); err != nil {
		logger.Errorf("Error persisting default config: %v", err)
	}

	GetMetricsService().RecordVpnConnect(true)
	vm.notify(models.StatusDetail{Connected: true, ConfigId: cfg.Id})
	return &models.ConnectResult{
		Success:  true,
		ConfigId: cfg.Id,
		Message:  "connected to " + cfg.Id,
	}
}

/**
 * Disconnect tears down the current session
 * @returns {*models.DisconnectResult} AlreadyDisconnected when no session exists
 */
func (vm *VpnManager) Disconnect() *models.DisconnectResult {
	vm.opMu.Lock()
	defer vm.opMu.Unlock()

	vm.mu.Lock()
	if vm.session == nil {
		vm.mu.Unlock()
		return &models.DisconnectResult{
			Success:             true,
			AlreadyDisconnected: true,
			Message:             "not connected",
		}
	}
	vm.mu.Unlock()

	sess, mon := vm.detachSession(StateDisconnecting)
	configId := sess.Config.Id
	vm.teardown(sess, mon, "user requested disconnect")
	vm.setState(StateDisconnected)

	GetMetricsService().RecordVpnDisconnect()
	vm.notify(models.StatusDetail{Connected: false, Reason: "user requested disconnect", ConfigId: configId})
	return &models.DisconnectResult{Success: true, Message: "disconnected from " + configId}
}

// detachSession 在短临界区内取下当前会话与监视器并切换状态
func (vm *VpnManager) detachSession(next ConnectionState) (*Session, *ConnectionMonitor) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	sess, mon := vm.session, vm.monitor
	vm.session = nil
	vm.monitor = nil
	vm.state = next
	return sess, mon
}

func (vm *VpnManager) setState(state ConnectionState) {
	vm.mu.Lock()
	vm.state = state
	vm.mu.Unlock()
}

// teardown 停止监视并回收进程。调用方不得持有vm.mu
func (vm *VpnManager) teardown(sess *Session, mon *ConnectionMonitor, reason string) {
	if mon != nil {
		mon.Stop()
	}
	if err := vm.sup.Terminate(sess.Process, vm.gracePeriod); err != nil {
		logger.Errorf("Error terminating tunnel client: %v", err)
	}
	logger.Infof("Session %s torn down: %s", sess.Config.Id, reason)
}

/**
 * handleConnectionDown 监视器检测到连接失效时的一次性回调
 * @param {*Session} sess - The session the firing monitor belongs to
 * @param {string} reason - Down reason reported by the monitor
 * @description
 * - The callback only acts when sess is still the current session: a
 *   callback already in flight while a reconnect replaces the session
 *   arrives late and must not tear down the replacement
 */
func (vm *VpnManager) handleConnectionDown(sess *Session, reason string) {
	vm.opMu.Lock()
	defer vm.opMu.Unlock()

	vm.mu.Lock()
	if vm.session != sess {
		vm.mu.Unlock()
		logger.Debugf("Ignoring down callback for replaced session %s", sess.Config.Id)
		return
	}
	mon := vm.monitor
	vm.session = nil
	vm.monitor = nil
	vm.state = StateDisconnected
	vm.mu.Unlock()

	configId := sess.Config.Id
	duration := int64(time.Since(sess.StartedAt).Seconds())
	vm.teardown(sess, mon, reason)

	GetMetricsService().RecordVpnDrop(reason)
	logger.Errorf("VPN connection to %s lost after %ds: %s", configId, duration, reason)
	vm.notify(models.StatusDetail{
		Connected:       false,
		Reason:          reason,
		ConfigId:        configId,
		DurationSeconds: duration,
	})
}

/**
 * GetStatus returns a snapshot of the current connection
 * @returns {models.VpnStatus} Copied fields only, never live session state
 * @description
 * - The management interface dial happens after the lock is released, so
 *   a slow dial cannot block connect or disconnect
 */
func (vm *VpnManager) GetStatus() models.VpnStatus {
	vm.mu.Lock()
	status := models.VpnStatus{
		State:              vm.state.String(),
		AutoConnectEnabled: vm.settings.Load().AutoConnectEnabled,
	}
	var mgmtAddr string
	if vm.session != nil {
		status.Connected = vm.state == StateConnected
		status.ConfigId = vm.session.Config.Id
		status.DurationSeconds = int64(time.Since(vm.session.StartedAt).Seconds())
		status.ProcessAlive = vm.sup.IsAlive(vm.session.Process)
		mgmtAddr = vm.session.ManagementAddr
	}
	vm.mu.Unlock()

	if mgmtAddr != "" {
		status.ManagementReachable = utils.CheckTCPReachable(mgmtAddr, 500*time.Millisecond)
	}
	return status
}

// GetSettings returns the persisted VPN policy settings.
func (vm *VpnManager) GetSettings() models.VpnSettings {
	return vm.settings.Load()
}

/**
 * UpdateSettings applies a partial settings update
 * @param {models.SettingsRequest} req - Fields to change, nil means keep
 * @returns {models.VpnSettings} The settings after the update
 * @returns {error} Persistence error
 */
func (vm *VpnManager) UpdateSettings(req models.SettingsRequest) (models.VpnSettings, error) {
	// 与connect持久化默认配置的写入串行
	vm.opMu.Lock()
	defer vm.opMu.Unlock()

	settings := vm.settings.Load()
	if req.AutoConnectEnabled != nil {
		settings.AutoConnectEnabled = *req.AutoConnectEnabled
	}
	if req.DefaultConfigId != nil {
		// 非空引用必须指向真实存在的配置文件
		if *req.DefaultConfigId != "" {
			if _, verr := vm.configs.Get(*req.DefaultConfigId); verr != nil {
				return settings, verr
			}
		}
		settings.DefaultConfigId = *req.DefaultConfigId
	}
	if err := vm.settings.Save(settings); err != nil {
		return settings, err
	}
	return settings, nil
}

/**
 * AutoConnectIfEnabled connects to the stored default config at startup
 * @description
 * - No-op unless auto-connect is enabled and a default config is stored;
 *   a failed auto-connect is logged and left for a manual retry
 */
func (vm *VpnManager) AutoConnectIfEnabled() {
	settings := vm.settings.Load()
	if !settings.AutoConnectEnabled || settings.DefaultConfigId == "" {
		return
	}
	logger.Infof("Auto-connecting to default config %s", settings.DefaultConfigId)
	result := vm.Connect(settings.DefaultConfigId, false)
	if !result.Success {
		logger.Errorf("Auto-connect failed: %s", result.Message)
	}
}

func connectFailure(verr *VpnError) *models.ConnectResult {
	return &models.ConnectResult{
		Success: false,
		Message: verr.Message,
		Code:    string(verr.Code),
	}
}
