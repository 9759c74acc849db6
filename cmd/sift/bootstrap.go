package main

import (
	"github.com/jamesainslie/sift/pkg/sift/config"
	"github.com/jamesainslie/sift/pkg/sift/logging"
	"github.com/jamesainslie/sift/pkg/sift/types"
	"github.com/spf13/cobra"
)

// initializeLogging runs before every command: it creates the XDG
// directories and starts file logging, plus console logging with -v.
func initializeLogging(_ *cobra.Command, _ []string) error {
	if err := config.EnsureDirs(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Rotation:   parseRotationConfig(cfg.Logging.Rotation),
		Components: cfg.Logging.Components,
	}
	if logCfg.Path == "" {
		logCfg.Path = logging.DefaultLogPath()
	}
	if getVerbose() && !getQuiet() {
		logCfg.ConsoleLevel = "debug"
	}
	return logging.Init(logCfg)
}

// parseRotationConfig converts config sizes to bytes. An empty or invalid
// max_size falls back to the default.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	out := logging.RotationConfig{
		MaxSize:    logging.DefaultRotationConfig().MaxSize,
		MaxAge:     rc.MaxAge,
		MaxBackups: rc.MaxBackups,
		Daily:      rc.Daily,
	}
	if rc.MaxSize != "" {
		if n, err := types.ParseSize(rc.MaxSize); err == nil && n > 0 {
			out.MaxSize = n
		}
	}
	return out
}
