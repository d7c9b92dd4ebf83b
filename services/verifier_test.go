package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetEgressIPFallsThroughFailedEndpoints(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not an ip address"))
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("203.0.113.5\n"))
	}))
	defer working.Close()

	cv := NewConnectivityVerifier([]string{"http://127.0.0.1:1/ip", broken.URL, working.URL}, nil)
	ip, ok := cv.GetEgressIP()
	if !ok {
		t.Fatal("Expected an egress IP from the last endpoint")
	}
	if ip != "203.0.113.5" {
		t.Errorf("Expected 203.0.113.5, got %q", ip)
	}
}

func TestGetEgressIPAllEndpointsFail(t *testing.T) {
	cv := NewConnectivityVerifier([]string{"http://127.0.0.1:1/ip"}, nil)
	if _, ok := cv.GetEgressIP(); ok {
		t.Error("Expected no egress IP when every endpoint fails")
	}
}

func TestVerifyAgainstBaseline(t *testing.T) {
	current := "203.0.113.5"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(current))
	}))
	defer server.Close()

	cv := NewConnectivityVerifier([]string{server.URL}, nil)

	if !cv.Verify("198.51.100.9") {
		t.Error("Changed egress IP should verify")
	}
	if cv.Verify("203.0.113.5") {
		t.Error("Unchanged egress IP should not verify")
	}
	// 基线缺失时任何有效出口IP都算验证通过
	if !cv.Verify("") {
		t.Error("Any egress IP should verify when no baseline exists")
	}
}

func TestReachabilityProbe(t *testing.T) {
	listener := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer listener.Close()

	addr := listener.Listener.Addr().String()
	cv := NewConnectivityVerifier(nil, []string{"127.0.0.1:1", addr})
	if !cv.ReachabilityProbe() {
		t.Error("Probe should succeed when one host accepts connections")
	}

	cv = NewConnectivityVerifier(nil, []string{"127.0.0.1:1"})
	if cv.ReachabilityProbe() {
		t.Error("Probe should fail when no host accepts connections")
	}
}
