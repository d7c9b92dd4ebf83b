package rpc

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dust-keeper/internal/logger"
)

/**
 * Initialize test environment
 * @description
 * - Initializes logger system for the rpc package tests
 * - Called automatically when test package is loaded
 */
func init() {
	logger.InitLogger("console", "error", false)
}

func testClient(url string) *Client {
	return &Client{
		baseURL: url,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if !testClient(server.URL).Available() {
		t.Error("Client should report a healthy server as available")
	}
	if testClient("http://127.0.0.1:1").Available() {
		t.Error("Client should report an unreachable server as unavailable")
	}
}

func TestGetDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"state": "connected"}`))
	}))
	defer server.Close()

	var out struct {
		State string `json:"state"`
	}
	if err := testClient(server.URL).Get("/dust/api/v1/vpn/status", &out); err != nil {
		t.Fatal(err)
	}
	if out.State != "connected" {
		t.Errorf("Expected decoded state, got %q", out.State)
	}
}

func TestPostSendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	var out struct {
		Success bool `json:"success"`
	}
	body := map[string]string{"config": "work"}
	if err := testClient(server.URL).Post("/dust/api/v1/vpn/connect", body, &out); err != nil {
		t.Fatal(err)
	}
	if !out.Success {
		t.Error("Expected decoded success flag")
	}
}

func TestErrorResponseSurfacesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "VPN configuration not found: missing"}`))
	}))
	defer server.Close()

	err := testClient(server.URL).Get("/x", nil)
	if err == nil {
		t.Fatal("Expected an error for a 404 response")
	}
	if got := err.Error(); got != "server returned 404: VPN configuration not found: missing" {
		t.Errorf("Unexpected error message: %q", got)
	}
}
