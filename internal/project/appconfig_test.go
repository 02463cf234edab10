package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/runaround/internal/model"
)

// writeTemp writes body to name inside a fresh temp dir and returns its path.
func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAppConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.json")

	want := model.DefaultAppConfig()
	want.DefaultOverlapSpacing = 10
	want.Theme = "dark"
	want.AutoSaveInterval = 5
	want.RecentProjects = []string{"/tmp/lobby.runaround.json", "/tmp/hall.runaround.json"}

	if err := SaveAppConfig(path, want); err != nil {
		t.Fatalf("SaveAppConfig: %v", err)
	}
	got, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig: %v", err)
	}
	if got.DefaultOverlapSpacing != 10 || got.Theme != "dark" || got.AutoSaveInterval != 5 {
		t.Errorf("settings lost in round trip: %+v", got)
	}
	if len(got.RecentProjects) != 2 || got.RecentProjects[1] != "/tmp/hall.runaround.json" {
		t.Errorf("recent projects lost in round trip: %v", got.RecentProjects)
	}
}

func TestLoadAppConfig(t *testing.T) {
	def := model.DefaultAppConfig()

	tests := []struct {
		name  string
		body  string // "" leaves the file missing
		check func(t *testing.T, cfg model.AppConfig)
	}{
		{
			name: "missing file gives defaults",
			check: func(t *testing.T, cfg model.AppConfig) {
				if cfg.DefaultRoomWidth != def.DefaultRoomWidth || cfg.Theme != "system" {
					t.Errorf("expected defaults, got %+v", cfg)
				}
			},
		},
		{
			name: "partial file keeps other defaults",
			body: `{"theme":"light"}`,
			check: func(t *testing.T, cfg model.AppConfig) {
				if cfg.Theme != "light" {
					t.Errorf("theme = %s, want light", cfg.Theme)
				}
				if cfg.RecomputeDebounce != 150 || cfg.DefaultRouteProfile != "Standard" {
					t.Errorf("defaults not kept: debounce %d, profile %s", cfg.RecomputeDebounce, cfg.DefaultRouteProfile)
				}
			},
		},
		{
			name: "null recent projects",
			body: `{"default_overlap_spacing":6,"recent_projects":null}`,
			check: func(t *testing.T, cfg model.AppConfig) {
				if cfg.RecentProjects == nil {
					t.Error("RecentProjects should not be nil")
				}
			},
		},
		{
			name: "out of range values",
			body: `{"theme":"neon","auto_save_interval":-3,"recompute_debounce":-1}`,
			check: func(t *testing.T, cfg model.AppConfig) {
				if cfg.Theme != "system" {
					t.Errorf("unknown theme should fall back to system, got %s", cfg.Theme)
				}
				if cfg.AutoSaveInterval != 0 {
					t.Errorf("negative autosave interval should become 0, got %d", cfg.AutoSaveInterval)
				}
				if cfg.RecomputeDebounce != 150 {
					t.Errorf("negative debounce should reset to 150, got %d", cfg.RecomputeDebounce)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if tt.body != "" {
				path = writeTemp(t, "config.json", tt.body)
			}
			cfg, err := LoadAppConfig(path)
			if err != nil {
				t.Fatalf("LoadAppConfig: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	if _, err := LoadAppConfig(writeTemp(t, "config.json", "not valid json{{{")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestDefaultConfigDirEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigDirEnv, dir)
	if got := DefaultConfigDir(); got != dir {
		t.Errorf("DefaultConfigDir() = %s, want %s", got, dir)
	}
	if got := DefaultConfigPath(); got != filepath.Join(dir, "config.json") {
		t.Errorf("unexpected config path %s", got)
	}
}
