package services

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"dust-keeper/internal/logger"
)

/**
 * TunnelProcess 被监管的隧道客户端进程句柄
 * @property {int} Pid - Process id
 * @property {string} LogPath - Path the client's own log is redirected to
 * @property {string} ManagementAddr - host:port of the client management interface
 * @description
 * - The handle is owned by the ProcessSupervisor; liveness checks and
 *   termination always go through supervisor methods
 */
type TunnelProcess struct {
	Pid            int
	Binary         string
	ConfigPath     string
	LogPath        string
	ManagementAddr string
	StartTime      time.Time

	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
}

// ExitError returns the error recorded by Wait, nil before exit.
func (tp *TunnelProcess) ExitError() error {
	select {
	case <-tp.done:
		return tp.waitErr
	default:
		return nil
	}
}

/**
 * ProcessSupervisor 隧道客户端进程的生命周期管理
 * @description
 * - Owns spawning, liveness-checking and termination of the external
 *   tunnel client; all platform divergence (search paths, startup flags,
 *   stop signal semantics) lives here and in the _unix/_windows files
 */
type ProcessSupervisor struct {
	binaryPath string // 配置显式指定的客户端路径，为空时执行查找
}

func NewProcessSupervisor(binaryPath string) *ProcessSupervisor {
	return &ProcessSupervisor{binaryPath: binaryPath}
}

/**
 * Locate the tunnel client binary
 * @returns {string} Absolute path of the client executable
 * @returns {*VpnError} vpn.binary_not_found when every search step fails
 * @description
 * - Search order: explicit config path, well-known install paths for the
 *   platform, system PATH, then an OS-specific registry lookup
 * - A missing binary is fatal to the caller: the client must be installed
 *   by the operator, the manager never downloads it
 */
func (ps *ProcessSupervisor) FindClientBinary() (string, *VpnError) {
	if ps.binaryPath != "" {
		if _, err := os.Stat(ps.binaryPath); err == nil {
			return ps.binaryPath, nil
		}
		return "", newVpnError(CodeBinaryNotFound, "configured tunnel client binary does not exist: %s", ps.binaryPath)
	}

	for _, path := range wellKnownBinaryPaths() {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath(clientBinaryName); err == nil {
		return path, nil
	}

	// 最后兜底：查询系统注册信息（仅Windows有实现）
	if path := registryBinaryPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", newVpnError(CodeBinaryNotFound, "tunnel client binary not found, please install %s", clientBinaryName)
}

/**
 * Spawn the tunnel client process
 * @param {string} configPath - Tunnel definition file
 * @param {string} mgmtHost - Management interface host
 * @param {int} mgmtPort - Management interface port
 * @param {string} logPath - File the client redirects its own log to
 * @returns {*TunnelProcess} Handle of the started process
 * @returns {*VpnError} vpn.binary_not_found or vpn.spawn_failure
 * @description
 * - Launches with the fixed argument contract: config path, management
 *   address, log redirect, route/DNS overrides and verbosity
 * - Stdout/stderr are drained continuously so the child can never block
 *   on a full pipe; the client's real log goes to logPath via --log
 * - A goroutine reaps the process with Wait, so no zombie survives exit
 */
func (ps *ProcessSupervisor) Spawn(configPath, mgmtHost string, mgmtPort int, logPath string) (*TunnelProcess, *VpnError) {
	binary, verr := ps.FindClientBinary()
	if verr != nil {
		return nil, verr
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, wrapVpnError(CodeSpawnFailure, err, "failed to create log directory")
	}

	mgmtAddr := mgmtHost + ":" + strconv.Itoa(mgmtPort)
	args := []string{
		"--config", configPath,
		"--management", mgmtHost, strconv.Itoa(mgmtPort),
		"--log", logPath,
		"--verb", "3",
		"--redirect-gateway", "def1",
		"--dhcp-option", "DNS", "8.8.8.8",
		"--dhcp-option", "DNS", "8.8.4.4",
	}

	cmd := exec.Command(binary, args...)
	cmd.Dir = filepath.Dir(configPath)
	setSysProcAttr(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, wrapVpnError(CodeSpawnFailure, err, "failed to open stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, wrapVpnError(CodeSpawnFailure, err, "failed to open stderr pipe")
	}

	logger.Infof("Starting tunnel client: %s %v", binary, args)
	if err := cmd.Start(); err != nil {
		return nil, wrapVpnError(CodeSpawnFailure, err, "failed to start tunnel client")
	}

	tp := &TunnelProcess{
		Pid:            cmd.Process.Pid,
		Binary:         binary,
		ConfigPath:     configPath,
		LogPath:        logPath,
		ManagementAddr: mgmtAddr,
		StartTime:      time.Now(),
		cmd:            cmd,
		done:           make(chan struct{}),
	}

	go drainOutput("stdout", stdout)
	go drainOutput("stderr", stderr)
	go func() {
		tp.waitErr = cmd.Wait()
		close(tp.done)
	}()

	logger.Infof("Tunnel client started (PID: %d)", tp.Pid)
	return tp, nil
}

// drainOutput 持续读取子进程输出，防止管道写满导致子进程阻塞
func drainOutput(name string, pipe io.Reader) {
	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		logger.Debugf("tunnel client %s: %s", name, scanner.Text())
	}
}

/**
 * IsAlive reports whether the supervised process is still running
 * @param {*TunnelProcess} tp - Process handle
 * @returns {bool} false once Wait has reaped the process
 */
func (ps *ProcessSupervisor) IsAlive(tp *TunnelProcess) bool {
	if tp == nil {
		return false
	}
	select {
	case <-tp.done:
		return false
	default:
		return true
	}
}

/**
 * Terminate stops the supervised process and waits for its exit
 * @param {*TunnelProcess} tp - Process handle
 * @param {time.Duration} gracePeriod - Window for a graceful stop before force kill
 * @returns {error} Signal delivery error, nil when the process is gone
 * @description
 * - Sends the platform stop signal, waits up to gracePeriod, force-kills
 *   if the process is still alive and only returns after the reaper
 *   goroutine has observed the exit: no orphan survives this call
 */
func (ps *ProcessSupervisor) Terminate(tp *TunnelProcess, gracePeriod time.Duration) error {
	if tp == nil || !ps.IsAlive(tp) {
		return nil
	}

	logger.Infof("Terminating tunnel client (PID: %d)", tp.Pid)
	if err := sendStopSignal(tp.cmd.Process); err != nil {
		logger.Warnf("Failed to send stop signal to PID %d: %v", tp.Pid, err)
	}

	select {
	case <-tp.done:
		logger.Infof("Tunnel client (PID: %d) terminated gracefully", tp.Pid)
		return nil
	case <-time.After(gracePeriod):
	}

	logger.Warnf("Tunnel client (PID: %d) did not stop within %v, force killing", tp.Pid, gracePeriod)
	if err := tp.cmd.Process.Kill(); err != nil {
		logger.Errorf("Failed to kill tunnel client (PID: %d): %v", tp.Pid, err)
	}
	<-tp.done
	return nil
}
