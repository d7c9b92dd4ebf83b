package models

import "time"

// HealthResponse defines the /healthz response body
type HealthResponse struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	StartTime     time.Time `json:"startTime"`
	UptimeSeconds int64     `json:"uptimeSeconds"`
	TotalRequests int64     `json:"totalRequests"`
	ErrorRequests int64     `json:"errorRequests"`
	VpnConnected  bool      `json:"vpnConnected"`
}
