//go:build unix || linux || darwin

package services

import (
	"os"
	"os/exec"
	"syscall"
)

const clientBinaryName = "openvpn"

func wellKnownBinaryPaths() []string {
	return []string{
		"/usr/sbin/openvpn",
		"/usr/bin/openvpn",
		"/usr/local/sbin/openvpn",
		"/usr/local/bin/openvpn",
		"/opt/homebrew/sbin/openvpn",
	}
}

// registryBinaryPath 仅Windows有注册表查找，Unix直接返回空
func registryBinaryPath() string {
	return ""
}

// setSysProcAttr 把子进程放入独立进程组，避免终端信号误伤
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// sendStopSignal 优雅停止信号（SIGTERM）
func sendStopSignal(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
