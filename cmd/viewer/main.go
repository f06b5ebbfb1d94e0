// Package main is the entry point for the splatview mesh viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/splatworks/splatview/internal/config"
	"github.com/splatworks/splatview/internal/logger"
	"github.com/splatworks/splatview/internal/viewer"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Mesh.Path == "" {
		fmt.Fprintln(os.Stderr, "Usage: viewer [flags] <mesh.off>")
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== splatview ===", zap.String("mesh", cfg.Mesh.Path))
	logger.Info("controls: WASD move, mouse look, Space up, L-Ctrl/L-Shift down, Escape exit")

	v, err := viewer.New(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		v.Close()
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
