package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Graphics.FOV != 45 {
		t.Errorf("expected fov 45, got %f", cfg.Graphics.FOV)
	}

	if cfg.Camera.Speed != 5 {
		t.Errorf("expected camera speed 5, got %f", cfg.Camera.Speed)
	}
	if cfg.Camera.Sensitivity != 0.1 {
		t.Errorf("expected sensitivity 0.1, got %f", cfg.Camera.Sensitivity)
	}
	if cfg.Camera.Yaw != -90 {
		t.Errorf("expected yaw -90, got %f", cfg.Camera.Yaw)
	}

	// Orientation correction must default to identity.
	if cfg.Mesh.Orientation != (OrientationConfig{}) {
		t.Errorf("expected identity orientation, got %+v", cfg.Mesh.Orientation)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fov: 60

camera:
  position: [1, 2, 3]
  speed: 12
  sensitivity: 0.25

mesh:
  path: "room.off"
  orientation:
    pitch: 151.2
    yaw: -2.7
    roll: -1.35

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.FOV != 60 {
		t.Errorf("expected fov 60, got %f", cfg.Graphics.FOV)
	}

	if cfg.Camera.Position != [3]float32{1, 2, 3} {
		t.Errorf("expected position (1,2,3), got %v", cfg.Camera.Position)
	}
	if cfg.Camera.Speed != 12 {
		t.Errorf("expected speed 12, got %f", cfg.Camera.Speed)
	}

	if cfg.Mesh.Path != "room.off" {
		t.Errorf("expected mesh path room.off, got %s", cfg.Mesh.Path)
	}
	if cfg.Mesh.Orientation.Pitch != 151.2 {
		t.Errorf("expected orientation pitch 151.2, got %f", cfg.Mesh.Orientation.Pitch)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(t *testing.T, cfg *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Graphics.ShowFPS {
					t.Error("expected show_fps to be enabled with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "mesh flag",
			setup: func() { *flagMesh = "scene.off" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Mesh.Path != "scene.off" {
					t.Errorf("expected mesh path scene.off, got %s", cfg.Mesh.Path)
				}
			},
			teardown: func() { *flagMesh = "" },
		},
		{
			name: "size flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "orientation flags",
			setup: func() {
				*flagPitch = 151.2
				*flagRoll = -1.35
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Mesh.Orientation.Pitch != 151.2 {
					t.Errorf("expected pitch 151.2, got %f", cfg.Mesh.Orientation.Pitch)
				}
				if cfg.Mesh.Orientation.Roll != -1.35 {
					t.Errorf("expected roll -1.35, got %f", cfg.Mesh.Orientation.Roll)
				}
				if cfg.Mesh.Orientation.Yaw != 0 {
					t.Errorf("expected yaw untouched, got %f", cfg.Mesh.Orientation.Yaw)
				}
			},
			teardown: func() {
				*flagPitch = 0
				*flagRoll = 0
			},
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width comes from the flag, height from the file.
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sub", "config.yaml")

	cfg := Default()
	cfg.Mesh.Path = "saved.off"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reloading saved config failed: %v", err)
	}
	if loaded.Mesh.Path != "saved.off" {
		t.Errorf("round-tripped mesh path = %s", loaded.Mesh.Path)
	}
}
