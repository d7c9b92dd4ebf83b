package services

import "fmt"

// VpnErrorCode identifies a VPN failure class. The dotted strings double
// as the machine-readable "code" field in API error responses.
type VpnErrorCode string

const (
	CodeConfigNotFound      VpnErrorCode = "vpn.config_not_found"
	CodeConfigInvalid       VpnErrorCode = "vpn.config_invalid"
	CodeBinaryNotFound      VpnErrorCode = "vpn.binary_not_found"
	CodeSpawnFailure        VpnErrorCode = "vpn.spawn_failure"
	CodeEstablishTimeout    VpnErrorCode = "vpn.establish_timeout"
	CodeAuthFailure         VpnErrorCode = "vpn.auth_failure"
	CodeTLSFailure          VpnErrorCode = "vpn.tls_failure"
	CodeDNSFailure          VpnErrorCode = "vpn.dns_failure"
	CodeRoutingFailure      VpnErrorCode = "vpn.routing_failure"
	CodeConnectionRefused   VpnErrorCode = "vpn.connection_refused"
	CodeVerificationFailure VpnErrorCode = "vpn.verification_failure"
	CodeProcessCrashed      VpnErrorCode = "vpn.process_crashed"
	CodeEstablishFailed     VpnErrorCode = "vpn.establish_failed"
)

/**
 * VpnError 带失败类别的VPN错误
 * @property {VpnErrorCode} code - Failure class
 * @property {string} message - Human-readable diagnostic
 * @property {error} err - Wrapped cause, may be nil
 */
type VpnError struct {
	Code    VpnErrorCode
	Message string
	Err     error
}

func (e *VpnError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *VpnError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the failure requires operator action instead of a
// retry. Only a missing client binary qualifies: every other establishment
// failure is recoverable by a subsequent manual connect.
func (e *VpnError) Fatal() bool {
	return e.Code == CodeBinaryNotFound
}

func newVpnError(code VpnErrorCode, format string, args ...interface{}) *VpnError {
	return &VpnError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapVpnError(code VpnErrorCode, err error, format string, args ...interface{}) *VpnError {
	return &VpnError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}
