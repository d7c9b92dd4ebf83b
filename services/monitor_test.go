package services

import (
	"sync/atomic"
	"testing"
	"time"
)

func deadProcess() *TunnelProcess {
	tp := &TunnelProcess{Pid: 12345, done: make(chan struct{})}
	close(tp.done)
	return tp
}

func liveProcess() *TunnelProcess {
	return &TunnelProcess{Pid: 12345, done: make(chan struct{})}
}

func TestMonitorDetectsProcessDeath(t *testing.T) {
	sup := NewProcessSupervisor("")
	checker := &fakeChecker{reachable: true}
	cm := NewConnectionMonitor(sup, checker, 20*time.Millisecond, 1000)
	defer cm.Stop()

	var calls int32
	var gotReason atomic.Value
	done := make(chan struct{})
	cm.Start(deadProcess(), func(reason string) {
		atomic.AddInt32(&calls, 1)
		gotReason.Store(reason)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Monitor did not detect process death in time")
	}

	// 等一个周期确认回调不会触发第二次
	time.Sleep(60 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("Expected exactly one down callback, got %d", n)
	}
	if reason := gotReason.Load(); reason != "process terminated" {
		t.Errorf("Expected reason 'process terminated', got %v", reason)
	}
}

func TestMonitorDetectsConnectivityLoss(t *testing.T) {
	sup := NewProcessSupervisor("")
	checker := &fakeChecker{reachable: false}
	cm := NewConnectionMonitor(sup, checker, 20*time.Millisecond, 1)
	defer cm.Stop()

	var gotReason atomic.Value
	done := make(chan struct{})
	cm.Start(liveProcess(), func(reason string) {
		gotReason.Store(reason)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Monitor did not detect connectivity loss in time")
	}
	if reason := gotReason.Load(); reason != "connectivity lost" {
		t.Errorf("Expected reason 'connectivity lost', got %v", reason)
	}
}

func TestMonitorStopPreventsCallback(t *testing.T) {
	sup := NewProcessSupervisor("")
	checker := &fakeChecker{reachable: true}
	cm := NewConnectionMonitor(sup, checker, 20*time.Millisecond, 1000)

	var calls int32
	cm.Start(liveProcess(), func(reason string) {
		atomic.AddInt32(&calls, 1)
	})
	cm.Stop()
	cm.Stop() // 重复Stop应当安全

	time.Sleep(60 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("Expected no callback after Stop, got %d", n)
	}
}

func TestMonitorHealthyConnectionStaysQuiet(t *testing.T) {
	sup := NewProcessSupervisor("")
	checker := &fakeChecker{reachable: true}
	cm := NewConnectionMonitor(sup, checker, 10*time.Millisecond, 2)
	defer cm.Stop()

	var calls int32
	cm.Start(liveProcess(), func(reason string) {
		atomic.AddInt32(&calls, 1)
	})

	time.Sleep(100 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("Expected no callback for a healthy connection, got %d", n)
	}
}
