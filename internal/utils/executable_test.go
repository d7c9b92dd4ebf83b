package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0755); err != nil {
		t.Fatal(err)
	}
}

func TestFindExecutablesPriority(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extension fixtures are unix-oriented")
	}

	dir := filepath.Join(t.TempDir(), "MyGame")
	touch(t, filepath.Join(dir, "uninstall.sh"))
	touch(t, filepath.Join(dir, "game.sh"))
	touch(t, filepath.Join(dir, "MyGame.sh"))

	candidates := FindExecutables(dir)
	if len(candidates) != 3 {
		t.Fatalf("Expected 3 candidates, got %d: %v", len(candidates), candidates)
	}
	if filepath.Base(candidates[0]) != "MyGame.sh" {
		t.Errorf("Directory-named executable should rank first, got %s", candidates[0])
	}
	if filepath.Base(candidates[1]) != "game.sh" {
		t.Errorf("Generic game launcher should rank second, got %s", candidates[1])
	}
	if filepath.Base(candidates[2]) != "uninstall.sh" {
		t.Errorf("Uninstaller should rank last, got %s", candidates[2])
	}
}

func TestFindExecutablesDepthLimit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extension fixtures are unix-oriented")
	}

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "top.sh"))
	touch(t, filepath.Join(dir, "sub", "nested.sh"))
	touch(t, filepath.Join(dir, "sub", "deep", "buried", "too-deep.sh"))

	candidates := FindExecutables(dir)
	for _, c := range candidates {
		if filepath.Base(c) == "too-deep.sh" {
			t.Error("Search should stop two levels deep")
		}
	}
	if len(candidates) != 2 {
		t.Errorf("Expected top.sh and nested.sh, got %v", candidates)
	}
}

func TestFindExecutablesEmptyDir(t *testing.T) {
	if got := FindExecutables(t.TempDir()); len(got) != 0 {
		t.Errorf("Empty directory should yield no candidates, got %v", got)
	}
}
