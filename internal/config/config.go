// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Mesh     MeshConfig     `yaml:"mesh"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FPSLimit   int     `yaml:"fps_limit"`
	FOV        float32 `yaml:"fov"` // vertical field of view, degrees
	NearPlane  float32 `yaml:"near"`
	FarPlane   float32 `yaml:"far"`
	ShowFPS    bool    `yaml:"show_fps"`
}

// CameraConfig holds first-person camera settings.
type CameraConfig struct {
	Position    [3]float32 `yaml:"position"`    // world-space start position
	Yaw         float32    `yaml:"yaw"`         // degrees
	Pitch       float32    `yaml:"pitch"`       // degrees
	Speed       float32    `yaml:"speed"`       // world units per second
	Sensitivity float32    `yaml:"sensitivity"` // degrees per mouse count
}

// MeshConfig holds the mesh path and its authored-orientation correction.
// The orientation defaults to identity; assets exported with a different
// up axis set the angles here instead of the viewer hardcoding them.
type MeshConfig struct {
	Path        string            `yaml:"path"`
	Orientation OrientationConfig `yaml:"orientation"`
}

// OrientationConfig is a fixed model-space rotation in degrees, applied as
// X (pitch), then Y (yaw), then Z (roll).
type OrientationConfig struct {
	Pitch float32 `yaml:"pitch"`
	Yaw   float32 `yaml:"yaw"`
	Roll  float32 `yaml:"roll"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   60,
			FOV:        45,
			NearPlane:  0.1,
			FarPlane:   1000,
			ShowFPS:    false,
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 2, 20},
			Yaw:         -90,
			Pitch:       0,
			Speed:       5,
			Sensitivity: 0.1,
		},
		Mesh: MeshConfig{
			Path:        "",
			Orientation: OrientationConfig{}, // identity
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
