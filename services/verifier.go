package services

import (
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"dust-keeper/internal/logger"
)

// connectivityChecker is the part of the verifier the establisher and the
// facade depend on; tests substitute a fake.
type connectivityChecker interface {
	GetEgressIP() (string, bool)
	Verify(baselineIP string) bool
	ReachabilityProbe() bool
}

/**
 * ConnectivityVerifier 判定网络出口是否真正经过隧道
 * @description
 * - GetEgressIP queries an ordered list of independent IP echo endpoints
 *   and accepts the first syntactically valid address, tolerating
 *   individual endpoint failures by falling through to the next
 * - Verify compares the current egress IP against the pre-connect baseline
 * - ReachabilityProbe is a generic secondary signal used during monitoring
 */
type ConnectivityVerifier struct {
	endpoints  []string
	probeHosts []string
	client     *http.Client
}

func NewConnectivityVerifier(endpoints, probeHosts []string) *ConnectivityVerifier {
	return &ConnectivityVerifier{
		endpoints:  endpoints,
		probeHosts: probeHosts,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

/**
 * GetEgressIP queries the echo endpoints for the current public IP
 * @returns {string} The observed egress IP
 * @returns {bool} false when no endpoint produced a valid address
 */
func (cv *ConnectivityVerifier) GetEgressIP() (string, bool) {
	for _, endpoint := range cv.endpoints {
		ip, err := cv.fetchIP(endpoint)
		if err != nil {
			logger.Debugf("IP echo endpoint %s failed: %v", endpoint, err)
			continue
		}
		if net.ParseIP(ip) != nil {
			return ip, true
		}
		logger.Debugf("IP echo endpoint %s returned malformed body: %q", endpoint, ip)
	}
	return "", false
}

func (cv *ConnectivityVerifier) fetchIP(endpoint string) (string, error) {
	resp, err := cv.client.Get(endpoint)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// 响应体就是一个IP地址，限制读取长度防御异常端点
	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

/**
 * Verify checks whether egress now differs from the pre-connect baseline
 * @param {string} baselineIP - Egress IP recorded before the tunnel came up, may be empty
 * @returns {bool} true when the tunnel is routing traffic
 * @description
 * - With a baseline: true only if a current IP is obtainable and differs
 * - Without a baseline (the pre-connect lookup failed): any resolvable
 *   current IP counts as success
 */
func (cv *ConnectivityVerifier) Verify(baselineIP string) bool {
	currentIP, ok := cv.GetEgressIP()
	if !ok {
		return false
	}
	if baselineIP == "" {
		logger.Infof("No baseline egress IP, current IP %s accepted as working", currentIP)
		return true
	}
	if currentIP != baselineIP {
		logger.Infof("Egress IP changed from %s to %s, tunnel verified", baselineIP, currentIP)
		return true
	}
	logger.Warnf("Egress IP %s unchanged, tunnel not routing traffic", currentIP)
	return false
}

/**
 * ReachabilityProbe checks generic network connectivity
 * @returns {bool} true when any probe host accepts a TCP connection
 * @description
 * - Independent of tunnel-specific IP change; used as a fallback signal
 *   on the slower monitoring cadence
 */
func (cv *ConnectivityVerifier) ReachabilityProbe() bool {
	for _, host := range cv.probeHosts {
		conn, err := net.DialTimeout("tcp", host, 3*time.Second)
		if err != nil {
			continue
		}
		conn.Close()
		return true
	}
	return false
}
