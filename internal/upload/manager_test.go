package upload

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeManifest creates dir/name/hook.json for m.
func writeManifest(t *testing.T, dir, name string, m Manifest) string {
	t.Helper()

	hookDir := filepath.Join(dir, name)
	if err := os.MkdirAll(hookDir, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(hookDir, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return hookDir
}

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()
	hookDir := writeManifest(t, tmpDir, "register-upload", Manifest{
		Name:        "register-upload",
		Version:     "1.0.0",
		Description: "Posts signatures to the registration service",
		Executable:  "register-upload",
		Actions:     []string{ActionRegister, ActionValidate},
	})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	hooks := manager.List()
	if len(hooks) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(hooks))
	}

	hook := hooks[0]
	if hook.Manifest.Name != "register-upload" {
		t.Errorf("expected hook name 'register-upload', got %q", hook.Manifest.Name)
	}
	if hook.Manifest.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", hook.Manifest.Version)
	}
	if hook.Path != hookDir {
		t.Errorf("expected path %q, got %q", hookDir, hook.Path)
	}
	if hook.Executable != filepath.Join(hookDir, "register-upload") {
		t.Errorf("unexpected executable %q", hook.Executable)
	}
	if !hook.Supports(ActionValidate) || hook.Supports("delete") {
		t.Errorf("unexpected action support: %v", hook.Manifest.Actions)
	}
}

func TestManager_Discover_SortedAndRescanned(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"hook-b", "hook-a"} {
		writeManifest(t, tmpDir, name, Manifest{Name: name, Executable: name, Actions: []string{ActionRegister}})
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	hooks := manager.List()
	if len(hooks) != 2 {
		t.Fatalf("expected 2 hooks, got %d", len(hooks))
	}
	if hooks[0].Manifest.Name != "hook-a" || hooks[1].Manifest.Name != "hook-b" {
		t.Errorf("hooks not sorted: %s, %s", hooks[0].Manifest.Name, hooks[1].Manifest.Name)
	}

	if err := os.RemoveAll(filepath.Join(tmpDir, "hook-b")); err != nil {
		t.Fatalf("failed to remove hook: %v", err)
	}
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if n := len(manager.List()); n != 1 {
		t.Errorf("expected 1 hook after rescan, got %d", n)
	}
}

func TestManager_Discover_Skips(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"invalid json", "not valid json"},
		{"missing name", `{"executable":"x","actions":["register"]}`},
		{"missing executable", `{"name":"x","actions":["register"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			hookDir := filepath.Join(tmpDir, "bad-hook")
			if err := os.MkdirAll(hookDir, 0755); err != nil {
				t.Fatalf("failed to create hook dir: %v", err)
			}
			if err := os.WriteFile(filepath.Join(hookDir, ManifestFile), []byte(tt.manifest), 0644); err != nil {
				t.Fatalf("failed to write manifest: %v", err)
			}

			manager := NewManager(tmpDir)
			if err := manager.Discover(); err != nil {
				t.Fatalf("Discover() failed unexpectedly: %v", err)
			}
			if n := len(manager.List()); n != 0 {
				t.Fatalf("expected 0 hooks, got %d", n)
			}
		})
	}
}

func TestManager_Discover_NonExistentDir(t *testing.T) {
	manager := NewManager("/path/that/does/not/exist")

	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed on non-existent dir: %v", err)
	}
	if n := len(manager.List()); n != 0 {
		t.Fatalf("expected 0 hooks, got %d", n)
	}
}

func TestManager_Get_NotFound(t *testing.T) {
	manager := NewManager(t.TempDir())

	if _, err := manager.Get("nonexistent-hook"); !errors.Is(err, ErrHookNotFound) {
		t.Errorf("expected ErrHookNotFound, got %v", err)
	}
}

func TestManager_HooksDir(t *testing.T) {
	dir := "/path/to/hooks"
	if got := NewManager(dir).HooksDir(); got != dir {
		t.Errorf("expected hooks dir %q, got %q", dir, got)
	}
}

func TestManager_BundledHookManifest(t *testing.T) {
	// The repository ships hooks/register-upload; its manifest must load.
	manager := NewManager(filepath.Join("..", "..", "hooks"))
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	hook, err := manager.Get("register-upload")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	for _, action := range []string{ActionRegister, ActionValidate} {
		if !hook.Supports(action) {
			t.Errorf("register-upload should support %q", action)
		}
	}
}
