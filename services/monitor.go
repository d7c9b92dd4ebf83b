package services

import (
	"sync"
	"time"

	"dust-keeper/internal/logger"
)

/**
 * ConnectionMonitor 已建立连接的后台健康监视
 * @description
 * - Runs one goroutine per established session, checking process liveness
 *   every tick and probing network reachability on a slower cadence
 * - On the first detected failure it fires the onDown callback exactly
 *   once and stops itself; re-connection policy belongs to the caller
 */
type ConnectionMonitor struct {
	sup      *ProcessSupervisor
	verifier connectivityChecker

	Interval       time.Duration
	ProbeEveryTick int // 每N个tick做一次可达性探测

	mu      sync.Mutex
	stopCh  chan struct{}
	stopped bool
}

func NewConnectionMonitor(sup *ProcessSupervisor, verifier connectivityChecker, interval time.Duration, probeEveryTick int) *ConnectionMonitor {
	if probeEveryTick <= 0 {
		probeEveryTick = 1
	}
	return &ConnectionMonitor{
		sup:            sup,
		verifier:       verifier,
		Interval:       interval,
		ProbeEveryTick: probeEveryTick,
		stopCh:         make(chan struct{}),
	}
}

/**
 * Start begins monitoring the given process
 * @param {*TunnelProcess} proc - The supervised tunnel client process
 * @param {func(string)} onDown - Invoked once with a reason when the
 *                                connection is detected down
 * @description
 * - Process death is checked every tick; reachability is checked every
 *   ProbeEveryTick ticks so the cheap signal dominates
 * - Stop prevents any new callback from firing; a callback that already
 *   passed the stopped check may still be running when Stop returns, so
 *   the owner must tolerate one late invocation
 */
func (cm *ConnectionMonitor) Start(proc *TunnelProcess, onDown func(reason string)) {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		tick := 0
		for {
			select {
			case <-cm.stopCh:
				return
			case <-ticker.C:
			}
			tick++

			if !cm.sup.IsAlive(proc) {
				cm.fire(onDown, "process terminated")
				return
			}
			if tick%cm.ProbeEveryTick == 0 && !cm.verifier.ReachabilityProbe() {
				logger.Warn("Reachability probe failed on established connection")
				cm.fire(onDown, "connectivity lost")
				return
			}
		}
	}()
}

// fire 回调最多触发一次，且与Stop互斥
func (cm *ConnectionMonitor) fire(onDown func(string), reason string) {
	cm.mu.Lock()
	if cm.stopped {
		cm.mu.Unlock()
		return
	}
	cm.stopped = true
	cm.mu.Unlock()

	logger.Warnf("Connection down: %s", reason)
	onDown(reason)
}

// Stop ends monitoring. Safe to call more than once.
func (cm *ConnectionMonitor) Stop() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.stopped {
		return
	}
	cm.stopped = true
	close(cm.stopCh)
}
