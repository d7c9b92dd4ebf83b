package services

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestListConfigsParsesRemoteDirective(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "work.ovpn", `
# tunnel to the work gateway
client
remote vpn.example.com 1194 udp
verb 3
`)

	configs, err := NewConfigStore(dir).ListConfigs()
	if err != nil {
		t.Fatal(err)
	}
	if len(configs) != 1 {
		t.Fatalf("Expected 1 config, got %d", len(configs))
	}
	cfg := configs[0]
	if cfg.Id != "work" || cfg.Filename != "work.ovpn" {
		t.Errorf("Unexpected identity: id=%q filename=%q", cfg.Id, cfg.Filename)
	}
	if cfg.RemoteHost != "vpn.example.com" || cfg.RemotePort != 1194 || cfg.Protocol != "udp" {
		t.Errorf("Remote directive not parsed: %+v", cfg)
	}
}

func TestListConfigsSeparateDirectives(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "split.ovpn", `
remote vpn.example.com
port 443
proto tcp
`)

	configs, err := NewConfigStore(dir).ListConfigs()
	if err != nil {
		t.Fatal(err)
	}
	cfg := configs[0]
	if cfg.RemotePort != 443 || cfg.Protocol != "tcp" {
		t.Errorf("Separate port/proto directives not parsed: %+v", cfg)
	}
}

func TestListConfigsIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.ovpn", "remote a.example.com 1194\n")
	writeConfig(t, dir, "notes.txt", "not a config\n")
	if err := os.Mkdir(filepath.Join(dir, "sub.ovpn"), 0755); err != nil {
		t.Fatal(err)
	}

	configs, err := NewConfigStore(dir).ListConfigs()
	if err != nil {
		t.Fatal(err)
	}
	if len(configs) != 1 {
		t.Fatalf("Expected only .ovpn files, got %d entries", len(configs))
	}
}

func TestListConfigsMissingDirectory(t *testing.T) {
	configs, err := NewConfigStore(filepath.Join(t.TempDir(), "nope")).ListConfigs()
	if err != nil {
		t.Fatalf("Missing directory should not be an error, got %v", err)
	}
	if len(configs) != 0 {
		t.Errorf("Expected empty list, got %d", len(configs))
	}
}

func TestGetByIdAndFilename(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "home.ovpn", "remote home.example.com 1194\n")
	cs := NewConfigStore(dir)

	if _, verr := cs.Get("home"); verr != nil {
		t.Errorf("Get by id failed: %v", verr)
	}
	if _, verr := cs.Get("home.ovpn"); verr != nil {
		t.Errorf("Get by filename failed: %v", verr)
	}

	_, verr := cs.Get("missing")
	if verr == nil || verr.Code != CodeConfigNotFound {
		t.Errorf("Expected %s, got %v", CodeConfigNotFound, verr)
	}
}

func TestValidateRejectsMissingRemote(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "empty.ovpn", "client\nverb 3\n")
	cs := NewConfigStore(dir)

	cfg, verr := cs.Get("empty")
	if verr != nil {
		t.Fatal(verr)
	}
	verr = cs.Validate(cfg)
	if verr == nil || verr.Code != CodeConfigInvalid {
		t.Errorf("Expected %s for config without remote, got %v", CodeConfigInvalid, verr)
	}
}
