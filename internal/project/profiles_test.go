package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/runaround/internal/model"
)

func corridorProfile() model.RouteProfile {
	return model.RouteProfile{
		Name:        "Corridor",
		Description: "Wide clearance for hallway plans",
		Settings: model.RouteSettings{
			Ladder:         []model.RouteAttempt{{CellSize: 12, Margin: 10}},
			Final:          model.RouteAttempt{CellSize: 6, Margin: 4},
			StubCells:      2,
			FallbackMargin: 30,
		},
	}
}

func TestSaveAndLoadCustomProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")

	second := corridorProfile()
	second.Name = "Tight"
	second.Settings.Final.Margin = 0

	if err := SaveCustomProfiles(path, []model.RouteProfile{corridorProfile(), second}); err != nil {
		t.Fatalf("SaveCustomProfiles failed: %v", err)
	}

	loaded, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatalf("LoadCustomProfiles failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(loaded))
	}

	p := loaded[0]
	if p.Name != "Corridor" {
		t.Errorf("expected name Corridor, got %s", p.Name)
	}
	if p.Description != "Wide clearance for hallway plans" {
		t.Errorf("unexpected description %q", p.Description)
	}
	if len(p.Settings.Ladder) != 1 || p.Settings.Ladder[0].CellSize != 12 || p.Settings.Ladder[0].Margin != 10 {
		t.Errorf("unexpected ladder %+v", p.Settings.Ladder)
	}
	if p.Settings.Final.CellSize != 6 {
		t.Errorf("expected final cell size 6, got %f", p.Settings.Final.CellSize)
	}
	if p.Settings.StubCells != 2 {
		t.Errorf("expected 2 stub cells, got %d", p.Settings.StubCells)
	}
	if p.Settings.FallbackMargin != 30 {
		t.Errorf("expected fallback margin 30, got %f", p.Settings.FallbackMargin)
	}
	if loaded[1].Name != "Tight" {
		t.Errorf("expected second profile Tight, got %s", loaded[1].Name)
	}
}

func TestSaveCustomProfilesWritesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := SaveCustomProfiles(path, []model.RouteProfile{corridorProfile()}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"profiles:", "name: Corridor", "cell_size: 12", "fallback_margin: 30"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %q in:\n%s", want, data)
		}
	}
}

func TestLoadCustomProfilesNonExistent(t *testing.T) {
	profiles, err := LoadCustomProfiles(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if profiles == nil || len(profiles) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", profiles)
	}
}

func TestLoadCustomProfilesInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte("profiles: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCustomProfiles(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadCustomProfilesRejectsBuiltInName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	data := []byte("profiles:\n  - name: Fast\n    settings:\n      final:\n        cell_size: 5\n        margin: 2\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCustomProfiles(path); err == nil {
		t.Fatal("expected error for profile named after a built-in")
	}
}

func TestExportAndImportProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corridor.yaml")
	if err := ExportProfile(path, corridorProfile()); err != nil {
		t.Fatalf("ExportProfile failed: %v", err)
	}

	imported, err := ImportProfile(path)
	if err != nil {
		t.Fatalf("ImportProfile failed: %v", err)
	}
	if imported.Name != "Corridor" {
		t.Errorf("expected name Corridor, got %s", imported.Name)
	}
	if got := len(imported.Settings.Attempts()); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestImportProfileNoName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noname.yaml")
	if err := os.WriteFile(path, []byte("description: nameless\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportProfile(path); err == nil {
		t.Fatal("expected error for profile without name")
	}
}

func TestImportProfileWithoutAttempts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("name: Empty\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportProfile(path); err == nil {
		t.Fatal("expected error for profile with no attempts")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "profiles.yaml")
	if err := SaveCustomProfiles(path, nil); err != nil {
		t.Fatalf("SaveCustomProfiles should create parent dirs: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("profiles file was not created")
	}
}
