package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagMesh       = flag.String("mesh", "", "Path to the OFF mesh to view")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagPitch      = flag.Float64("pitch", 0, "Mesh orientation pitch in degrees")
	flagYaw        = flag.Float64("yaw", 0, "Mesh orientation yaw in degrees")
	flagRoll       = flag.Float64("roll", 0, "Mesh orientation roll in degrees")
)

// ParseFlags parses command-line flags. Call this early in main().
// A single positional argument is accepted as the mesh path.
func ParseFlags() {
	flag.Parse()
	if *flagMesh == "" && flag.NArg() > 0 {
		*flagMesh = flag.Arg(0)
	}
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Graphics.ShowFPS = true
	}
	if *flagMesh != "" {
		cfg.Mesh.Path = *flagMesh
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagPitch != 0 {
		cfg.Mesh.Orientation.Pitch = float32(*flagPitch)
	}
	if *flagYaw != 0 {
		cfg.Mesh.Orientation.Yaw = float32(*flagYaw)
	}
	if *flagRoll != 0 {
		cfg.Mesh.Orientation.Roll = float32(*flagRoll)
	}
}
