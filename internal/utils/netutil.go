package utils

import (
	"net"
	"time"
)

/**
 * Check whether a TCP endpoint accepts connections
 * @param {string} addr - host:port to dial
 * @param {time.Duration} timeout - Dial timeout
 * @returns {bool} true when the endpoint accepted the connection
 */
func CheckTCPReachable(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
