package services

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dust_request_total",
			Help: "Total HTTP requests by route",
		},
		[]string{"route"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dust_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	errorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dust_request_errors_total",
			Help: "Total HTTP requests that returned an error status",
		},
		[]string{"route"},
	)

	vpnConnectTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dust_vpn_connect_total",
			Help: "Total VPN connect attempts by result",
		},
		[]string{"result"},
	)

	vpnDropTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dust_vpn_drops_total",
			Help: "Total unexpected VPN connection losses by reason",
		},
		[]string{"reason"},
	)

	vpnConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dust_vpn_connected",
			Help: "Whether a VPN connection is currently established",
		},
	)

	gameLaunchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dust_game_launch_total",
			Help: "Total game launches by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(requestCount)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(errorCount)
	prometheus.MustRegister(vpnConnectTotal)
	prometheus.MustRegister(vpnDropTotal)
	prometheus.MustRegister(vpnConnected)
	prometheus.MustRegister(gameLaunchTotal)
}

// Prometheus计数器不可读，健康检查接口需要的总量另外用本地计数器维护
var (
	totalRequests int64
	totalErrors   int64
)

// IncrementRequestCount 增加请求计数
func IncrementRequestCount(route string) {
	requestCount.WithLabelValues(route).Inc()
	atomic.AddInt64(&totalRequests, 1)
}

// RecordRequestDuration 记录请求处理时间
func RecordRequestDuration(route string, seconds float64) {
	requestDuration.WithLabelValues(route).Observe(seconds)
}

// IncrementErrorCount 增加错误请求计数
func IncrementErrorCount(route string) {
	errorCount.WithLabelValues(route).Inc()
	atomic.AddInt64(&totalErrors, 1)
}

func GetTotalRequestCount() int64 {
	return atomic.LoadInt64(&totalRequests)
}

func GetTotalErrorCount() int64 {
	return atomic.LoadInt64(&totalErrors)
}

/**
 * MetricsService 业务指标记录
 * @description
 * - Thin facade over the registered Prometheus collectors so callers
 *   never touch collector handles directly
 */
type MetricsService struct{}

var (
	metricsService     *MetricsService
	metricsServiceOnce sync.Once
)

func GetMetricsService() *MetricsService {
	metricsServiceOnce.Do(func() {
		metricsService = &MetricsService{}
	})
	return metricsService
}

// RecordVpnConnect 记录一次连接尝试结果并维护连接状态gauge
func (ms *MetricsService) RecordVpnConnect(success bool) {
	if success {
		vpnConnectTotal.WithLabelValues("success").Inc()
		vpnConnected.Set(1)
	} else {
		vpnConnectTotal.WithLabelValues("failure").Inc()
	}
}

// RecordVpnDisconnect 主动断开后清零连接状态gauge
func (ms *MetricsService) RecordVpnDisconnect() {
	vpnConnected.Set(0)
}

// RecordVpnDrop 记录一次意外掉线
func (ms *MetricsService) RecordVpnDrop(reason string) {
	vpnDropTotal.WithLabelValues(reason).Inc()
	vpnConnected.Set(0)
}

// RecordGameLaunch 记录一次游戏启动结果
func (ms *MetricsService) RecordGameLaunch(success bool) {
	if success {
		gameLaunchTotal.WithLabelValues("success").Inc()
	} else {
		gameLaunchTotal.WithLabelValues("failure").Inc()
	}
}
