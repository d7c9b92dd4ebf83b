package services

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"dust-keeper/internal/env"
	"dust-keeper/internal/logger"
)

/**
 * Initialize test environment
 * @description
 * - Initializes logger system for the services package tests
 * - Called automatically when test package is loaded
 */
func init() {
	logger.InitLogger("console", "error", false)
}

// fakeChecker 测试用连接验证器
type fakeChecker struct {
	ip        string
	ok        bool
	verifyOK  bool
	reachable bool
}

func (f *fakeChecker) GetEgressIP() (string, bool) { return f.ip, f.ok }
func (f *fakeChecker) Verify(baseline string) bool { return f.verifyOK }
func (f *fakeChecker) ReachabilityProbe() bool     { return f.reachable }

func TestClassifyLogTailSuccessWinsOverFailure(t *testing.T) {
	// 重试场景：日志里先有TLS错误，随后连接成功
	tail := "TLS Error: TLS handshake failed\nInitialization Sequence Completed\n"
	outcome, _ := classifyLogTail(tail)
	if outcome != outcomeSuccess {
		t.Errorf("Expected success outcome when both marker classes present, got %v", outcome)
	}
}

func TestClassifyLogTailFailure(t *testing.T) {
	cases := []struct {
		tail string
		code VpnErrorCode
	}{
		{"AUTH: Received control message: AUTH_FAILED", CodeAuthFailure},
		{"TLS Error: TLS key negotiation failed", CodeTLSFailure},
		{"RESOLVE: Cannot resolve host address: vpn.example.com", CodeDNSFailure},
		{"TCP: connect to [AF_INET]1.2.3.4:443 failed: Connection refused", CodeConnectionRefused},
		{"ERROR: Linux route add command failed", CodeRoutingFailure},
	}
	for _, tc := range cases {
		outcome, code := classifyLogTail(tc.tail)
		if outcome != outcomeFailure {
			t.Errorf("Expected failure outcome for %q", tc.tail)
		}
		if code != tc.code {
			t.Errorf("Expected code %s for %q, got %s", tc.code, tc.tail, code)
		}
	}
}

func TestClassifyLogTailPending(t *testing.T) {
	outcome, _ := classifyLogTail("TUN/TAP device tun0 opened\n")
	if outcome != outcomePending {
		t.Errorf("Expected pending outcome for neutral log content, got %v", outcome)
	}
}

func TestCategorizeFailureSpecificity(t *testing.T) {
	verr := categorizeFailure("something\nAUTH_FAILED\n", CodeEstablishTimeout, "/tmp/x.log")
	if verr.Code != CodeAuthFailure {
		t.Errorf("Expected auth failure category, got %s", verr.Code)
	}

	verr = categorizeFailure("nothing recognizable here", CodeEstablishTimeout, "/tmp/x.log")
	if verr.Code != CodeEstablishTimeout {
		t.Errorf("Expected fallback category, got %s", verr.Code)
	}
}

func TestReadLogTailMissingFile(t *testing.T) {
	if tail := readLogTail(filepath.Join(t.TempDir(), "missing.log")); tail != "" {
		t.Errorf("Expected empty tail for missing file, got %q", tail)
	}
}

// writeFakeClient 生成伪造的隧道客户端脚本，把给定内容写入--log指定的文件
func writeFakeClient(t *testing.T, dir, logContent string, exitAfterWrite bool) string {
	t.Helper()
	script := `#!/bin/sh
LOG=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--log" ]; then
    LOG="$2"
  fi
  shift
done
printf '%s\n' '` + logContent + `' > "$LOG"
`
	if !exitAfterWrite {
		script += "sleep 60\n"
	}
	path := filepath.Join(dir, "fake-client")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestEstablisher(t *testing.T, binary string, checker connectivityChecker) (*ConnectionEstablisher, *ProcessSupervisor, string) {
	t.Helper()
	env.DustDir = t.TempDir()

	cfgDir := t.TempDir()
	cfgPath := filepath.Join(cfgDir, "test.ovpn")
	content := "client\nremote vpn.example.com 1194 udp\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	sup := NewProcessSupervisor(binary)
	ce := NewConnectionEstablisher(NewConfigStore(cfgDir), sup, checker, "127.0.0.1", 7505)
	ce.Timeout = 5 * time.Second
	ce.PollInterval = 100 * time.Millisecond
	ce.SettleDelay = 10 * time.Millisecond
	ce.GracePeriod = time.Second
	return ce, sup, cfgDir
}

func TestEstablishSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake client script requires a shell")
	}

	binary := writeFakeClient(t, t.TempDir(), "Initialization Sequence Completed", false)
	checker := &fakeChecker{ip: "203.0.113.5", ok: true, verifyOK: true, reachable: true}
	ce, sup, cfgDir := newTestEstablisher(t, binary, checker)

	cfg, verr := NewConfigStore(cfgDir).Get("test")
	if verr != nil {
		t.Fatal(verr)
	}

	session, verr := ce.Establish(cfg)
	if verr != nil {
		t.Fatalf("Expected establish to succeed, got %v", verr)
	}
	defer sup.Terminate(session.Process, time.Second)

	if !sup.IsAlive(session.Process) {
		t.Error("Client process should be alive after successful establish")
	}
	if session.BaselineEgressIP != "203.0.113.5" {
		t.Errorf("Expected baseline IP to be recorded, got %q", session.BaselineEgressIP)
	}
}

func TestEstablishAuthFailureTerminatesProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake client script requires a shell")
	}

	binary := writeFakeClient(t, t.TempDir(), "AUTH: Received control message: AUTH_FAILED", false)
	checker := &fakeChecker{ip: "203.0.113.5", ok: true}
	ce, _, cfgDir := newTestEstablisher(t, binary, checker)

	cfg, verr := NewConfigStore(cfgDir).Get("test")
	if verr != nil {
		t.Fatal(verr)
	}

	session, verr := ce.Establish(cfg)
	if session != nil {
		t.Fatal("Expected no session on auth failure")
	}
	if verr == nil || verr.Code != CodeAuthFailure {
		t.Fatalf("Expected %s, got %v", CodeAuthFailure, verr)
	}
}

func TestEstablishProcessCrash(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake client script requires a shell")
	}

	// 客户端启动后立即退出，且日志里没有可识别的标记
	binary := writeFakeClient(t, t.TempDir(), "unexpected internal error", true)
	checker := &fakeChecker{ip: "203.0.113.5", ok: true}
	ce, _, cfgDir := newTestEstablisher(t, binary, checker)

	cfg, verr := NewConfigStore(cfgDir).Get("test")
	if verr != nil {
		t.Fatal(verr)
	}

	_, verr = ce.Establish(cfg)
	if verr == nil || verr.Code != CodeProcessCrashed {
		t.Fatalf("Expected %s, got %v", CodeProcessCrashed, verr)
	}
}

func TestEstablishVerificationNeverPasses(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake client script requires a shell")
	}

	// 成功标记出现但出口IP始终不变
	binary := writeFakeClient(t, t.TempDir(), "Initialization Sequence Completed", false)
	checker := &fakeChecker{ip: "203.0.113.5", ok: true, verifyOK: false}
	ce, _, cfgDir := newTestEstablisher(t, binary, checker)
	ce.Timeout = time.Second

	cfg, verr := NewConfigStore(cfgDir).Get("test")
	if verr != nil {
		t.Fatal(verr)
	}

	_, verr = ce.Establish(cfg)
	if verr == nil || verr.Code != CodeVerificationFailure {
		t.Fatalf("Expected %s, got %v", CodeVerificationFailure, verr)
	}
}

func TestEstablishInvalidConfigNeverSpawns(t *testing.T) {
	checker := &fakeChecker{}
	ce, _, cfgDir := newTestEstablisher(t, filepath.Join(t.TempDir(), "does-not-exist"), checker)

	// 缺少remote指令的配置必须在生成进程之前被拒绝
	badPath := filepath.Join(cfgDir, "bad.ovpn")
	if err := os.WriteFile(badPath, []byte("client\nverb 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, verr := NewConfigStore(cfgDir).Get("bad")
	if verr != nil {
		t.Fatal(verr)
	}

	_, verr = ce.Establish(cfg)
	if verr == nil || verr.Code != CodeConfigInvalid {
		t.Fatalf("Expected %s before any spawn attempt, got %v", CodeConfigInvalid, verr)
	}
}
