//go:build windows

package services

import (
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/windows/registry"
)

const clientBinaryName = "openvpn.exe"

func wellKnownBinaryPaths() []string {
	return []string{
		`C:\Program Files\OpenVPN\bin\openvpn.exe`,
		`C:\Program Files (x86)\OpenVPN\bin\openvpn.exe`,
	}
}

// registryBinaryPath 从注册表读取OpenVPN安装目录，作为查找的最后手段
func registryBinaryPath() string {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\OpenVPN`, registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer key.Close()

	if exePath, _, err := key.GetStringValue("exe_path"); err == nil && exePath != "" {
		return exePath
	}
	if installDir, _, err := key.GetStringValue(""); err == nil && installDir != "" {
		return filepath.Join(installDir, "bin", clientBinaryName)
	}
	return ""
}

// setSysProcAttr 隐藏子进程窗口并放入新进程组
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// sendStopSignal Windows没有SIGTERM语义，直接Kill，由Terminate统一等待退出
func sendStopSignal(p *os.Process) error {
	return p.Kill()
}
