package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dust-keeper/internal/env"
	"dust-keeper/internal/logger"
	"dust-keeper/internal/models"
)

// logTailBytes 状态检测只看日志尾部，避免重复扫描整个文件
const logTailBytes = 16 * 1024

type markerOutcome int

const (
	outcomePending markerOutcome = iota
	outcomeSuccess
	outcomeFailure
)

type logMarker struct {
	substr  string
	outcome markerOutcome
	code    VpnErrorCode
}

// connectionMarkers is the ordered marker table driving state detection.
// Ordering is a contract: success markers are listed (and therefore
// checked) before failure markers, so a log window containing both
// resolves to success. Transient handshake errors routinely precede a
// successful retry in the client's log.
var connectionMarkers = []logMarker{
	{"Initialization Sequence Completed", outcomeSuccess, ""},
	{"AUTH_FAILED", outcomeFailure, CodeAuthFailure},
	{"auth-failure", outcomeFailure, CodeAuthFailure},
	{"TLS Error", outcomeFailure, CodeTLSFailure},
	{"TLS handshake failed", outcomeFailure, CodeTLSFailure},
	{"certificate verify failed", outcomeFailure, CodeTLSFailure},
	{"RESOLVE: Cannot resolve host address", outcomeFailure, CodeDNSFailure},
	{"Connection refused", outcomeFailure, CodeConnectionRefused},
	{"ERROR: Linux route", outcomeFailure, CodeRoutingFailure},
	{"ERROR: Windows route", outcomeFailure, CodeRoutingFailure},
	{"Route addition failed", outcomeFailure, CodeRoutingFailure},
}

/**
 * classifyLogTail 判定日志尾部当前对应的连接状态
 * @param {string} tail - Tail of the tunnel client log
 * @returns {markerOutcome} pending / success / failure
 * @returns {VpnErrorCode} Failure class for failure outcomes
 * @description
 * - Pure function over the ordered marker table; first match wins
 */
func classifyLogTail(tail string) (markerOutcome, VpnErrorCode) {
	for _, marker := range connectionMarkers {
		if strings.Contains(tail, marker.substr) {
			return marker.outcome, marker.code
		}
	}
	return outcomePending, ""
}

// failureCategories maps log content to the most specific failure class
// for diagnostics, most specific first.
var failureCategories = []logMarker{
	{"AUTH_FAILED", outcomeFailure, CodeAuthFailure},
	{"auth-failure", outcomeFailure, CodeAuthFailure},
	{"certificate verify failed", outcomeFailure, CodeTLSFailure},
	{"TLS handshake failed", outcomeFailure, CodeTLSFailure},
	{"TLS Error", outcomeFailure, CodeTLSFailure},
	{"TLS key negotiation failed to occur", outcomeFailure, CodeEstablishTimeout},
	{"Inactivity timeout", outcomeFailure, CodeEstablishTimeout},
	{"RESOLVE: Cannot resolve host address", outcomeFailure, CodeDNSFailure},
	{"Connection refused", outcomeFailure, CodeConnectionRefused},
	{"ECONNREFUSED", outcomeFailure, CodeConnectionRefused},
	{"ERROR: Linux route", outcomeFailure, CodeRoutingFailure},
	{"ERROR: Windows route", outcomeFailure, CodeRoutingFailure},
	{"Route addition failed", outcomeFailure, CodeRoutingFailure},
}

/**
 * categorizeFailure 根据日志内容归类失败原因
 * @param {string} tail - Tail of the tunnel client log
 * @param {VpnErrorCode} fallback - Class to use when nothing matches
 * @returns {*VpnError} The most specific matching category, or a generic
 *                      "see log" diagnostic with the fallback class
 */
func categorizeFailure(tail string, fallback VpnErrorCode, logPath string) *VpnError {
	for _, cat := range failureCategories {
		if strings.Contains(tail, cat.substr) {
			return newVpnError(cat.code, "tunnel client reported %q (log: %s)", cat.substr, logPath)
		}
	}
	return newVpnError(fallback, "connection failed, see tunnel client log: %s", logPath)
}

/**
 * Session 一次已建立（或建立中）的隧道会话
 * @description
 * - Exists only while the connection is being established or is up
 * - Exclusively owned by the VpnManager; the process handle inside is
 *   never used outside the ProcessSupervisor
 */
type Session struct {
	Config           models.TunnelConfig
	Process          *TunnelProcess
	StartedAt        time.Time
	ManagementAddr   string
	BaselineEgressIP string
}

/**
 * ConnectionEstablisher 连接建立状态机
 * @description
 * - Drives one connect attempt: validate, record baseline egress IP,
 *   spawn, poll the client log for markers, verify, decide
 * - Every failure path tears the spawned process down before returning;
 *   a failed Establish never leaks a child process
 */
type ConnectionEstablisher struct {
	configs  *ConfigStore
	sup      *ProcessSupervisor
	verifier connectivityChecker

	mgmtHost string
	mgmtPort int

	// 可配置的时间参数，测试用小值
	Timeout      time.Duration
	PollInterval time.Duration
	SettleDelay  time.Duration
	GracePeriod  time.Duration
}

func NewConnectionEstablisher(configs *ConfigStore, sup *ProcessSupervisor, verifier connectivityChecker, mgmtHost string, mgmtPort int) *ConnectionEstablisher {
	return &ConnectionEstablisher{
		configs:      configs,
		sup:          sup,
		verifier:     verifier,
		mgmtHost:     mgmtHost,
		mgmtPort:     mgmtPort,
		Timeout:      45 * time.Second,
		PollInterval: 2 * time.Second,
		SettleDelay:  2 * time.Second,
		GracePeriod:  10 * time.Second,
	}
}

/**
 * Establish runs one bounded connect attempt
 * @param {*models.TunnelConfig} cfg - Validated-or-not tunnel config
 * @returns {*Session} Live session, only on success
 * @returns {*VpnError} Classified failure, process already torn down
 * @description
 * - State machine: Disconnected -> Connecting -> Connected or Failed
 * - Polls on a fixed interval until timeout: process exit is a failure with
 *   log diagnostics; otherwise the log tail is classified against the
 *   ordered marker table (success before failure, first match wins)
 * - A success marker alone is not proof: after a settle delay the egress
 *   IP is verified against the baseline, and polling continues until
 *   timeout if verification fails
 */
func (ce *ConnectionEstablisher) Establish(cfg *models.TunnelConfig) (*Session, *VpnError) {
	if verr := ce.configs.Validate(cfg); verr != nil {
		return nil, verr
	}

	// 基线出口IP尽力获取，拿不到不算失败
	baselineIP, ok := ce.verifier.GetEgressIP()
	if ok {
		logger.Infof("Baseline egress IP: %s", baselineIP)
	} else {
		logger.Warn("Could not determine baseline egress IP, will accept any egress IP after connect")
	}

	logPath := filepath.Join(env.DustDir, "logs", fmt.Sprintf("openvpn_%d.log", time.Now().Unix()))
	proc, verr := ce.sup.Spawn(cfg.Path, ce.mgmtHost, ce.mgmtPort, logPath)
	if verr != nil {
		// 进程未启动，无需清理，立即返回映射后的错误
		return nil, verr
	}

	session := &Session{
		Config:           *cfg,
		Process:          proc,
		StartedAt:        time.Now(),
		ManagementAddr:   proc.ManagementAddr,
		BaselineEgressIP: baselineIP,
	}

	deadline := time.Now().Add(ce.Timeout)
	verified := false
	for time.Now().Before(deadline) {
		time.Sleep(ce.PollInterval)

		if !ce.sup.IsAlive(proc) {
			tail := readLogTail(logPath)
			logger.Errorf("Tunnel client exited during connection attempt: %v", proc.ExitError())
			return nil, ce.fail(proc, categorizeFailure(tail, CodeProcessCrashed, logPath))
		}

		tail := readLogTail(logPath)
		outcome, _ := classifyLogTail(tail)
		switch outcome {
		case outcomeSuccess:
			if !verified {
				// 等待路由稳定后再验证出口
				time.Sleep(ce.SettleDelay)
				verified = true
			}
			if ce.verifier.Verify(baselineIP) {
				logger.Infof("VPN connection to %s established and verified", cfg.Id)
				return session, nil
			}
			// 成功标记不是充分证据，验证不过继续轮询直到超时
			logger.Warn("Success marker seen but egress verification failed, continuing to poll")
		case outcomeFailure:
			tail := readLogTail(logPath)
			return nil, ce.fail(proc, categorizeFailure(tail, CodeEstablishFailed, logPath))
		}
	}

	tail := readLogTail(logPath)
	if verified {
		// 成功标记出现过但出口始终没有变化
		return nil, ce.fail(proc, newVpnError(CodeVerificationFailure,
			"tunnel came up but egress IP never changed (log: %s)", logPath))
	}
	return nil, ce.fail(proc, categorizeFailure(tail, CodeEstablishTimeout, logPath))
}

// fail 确保错误返回前子进程已被回收
func (ce *ConnectionEstablisher) fail(proc *TunnelProcess, verr *VpnError) *VpnError {
	if err := ce.sup.Terminate(proc, ce.GracePeriod); err != nil {
		logger.Errorf("Error terminating tunnel client after failed establish: %v", err)
	}
	return verr
}

// readLogTail 读取客户端日志尾部，文件暂不存在时返回空串
func readLogTail(logPath string) string {
	f, err := os.Open(logPath)
	if err != nil {
		return ""
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ""
	}
	offset := int64(0)
	if info.Size() > logTailBytes {
		offset = info.Size() - logTailBytes
	}
	buf := make([]byte, info.Size()-offset)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return ""
	}
	return string(buf)
}
