package animconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestRegistryLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "humanoid.yaml", "name: humanoid\nstates:\n  idle: {}\n")

	reg := NewRegistry()
	doc, err := reg.Load(filepath.Join(dir, "humanoid.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc.Name != "humanoid" {
		t.Errorf("expected name 'humanoid', got %q", doc.Name)
	}
	if !reg.Has("humanoid") {
		t.Error("registry should contain 'humanoid'")
	}
	if _, ok := reg.Get("ghost"); ok {
		t.Error("unknown name should not resolve")
	}
}

func TestRegistryNameDefaultsToFileStem(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "skeleton_warrior.yaml", "states:\n  idle: {}\n")

	reg := NewRegistry()
	doc, err := reg.Load(filepath.Join(dir, "skeleton_warrior.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc.Name != "skeleton_warrior" {
		t.Errorf("expected file-stem name, got %q", doc.Name)
	}
}

func TestRegistryLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.yaml", "states:\n  idle: {}\n")
	writeConfig(t, dir, "b.yml", "states:\n  idle: {}\n")
	writeConfig(t, dir, "broken.yaml", "{not yaml")
	writeConfig(t, dir, "notes.txt", "ignored")

	reg := NewRegistry()
	loaded, err := reg.LoadDirectory(dir)
	if err != nil {
		t.Fatalf("LoadDirectory failed: %v", err)
	}
	if loaded != 2 {
		t.Errorf("expected 2 loaded definitions, got %d", loaded)
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestRegistryLoadDirectoryMissing(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.LoadDirectory(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("missing directory should fail")
	}
}

func TestRegistryClear(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.yaml", "states:\n  idle: {}\n")

	reg := NewRegistry()
	if _, err := reg.Load(filepath.Join(dir, "a.yaml")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	reg.Clear()
	if reg.Has("a") {
		t.Error("Clear should remove definitions")
	}
}
