package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "memebooth",
	Short: "Gesture-triggered meme overlay booth",
	Long: `MemeBooth watches a camera feed for hand gestures and overlays meme
images with sound effects onto the live video. Point a browser at the
dashboard to watch the composited feed and manage meme definitions.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// envConfig is the environment-variable configuration surface. Flags on the
// run command override these.
type envConfig struct {
	Addr         string  `env:"MEMEBOOTH_ADDR" envDefault:":8080"`
	DataDir      string  `env:"MEMEBOOTH_DATA_DIR"`
	ConfigPath   string  `env:"MEMEBOOTH_CONFIG"`
	AssetsDir    string  `env:"MEMEBOOTH_ASSETS_DIR"`
	SoundsDir    string  `env:"MEMEBOOTH_SOUNDS_DIR"`
	StaticDir    string  `env:"MEMEBOOTH_STATIC_DIR"`
	CameraID     int     `env:"MEMEBOOTH_CAMERA_ID" envDefault:"0"`
	MotionThresh float64 `env:"MEMEBOOTH_MOTION_THRESHOLD" envDefault:"1.0"`
	Mirror       bool    `env:"MEMEBOOTH_MIRROR" envDefault:"true"`
	NoTray       bool    `env:"MEMEBOOTH_NO_TRAY"`
}

// loadEnvConfig parses the environment and fills in the default data
// directory (~/.memebooth) when none is configured.
func loadEnvConfig() (envConfig, error) {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(homeDir, ".memebooth")
	}

	if cfg.AssetsDir == "" {
		cfg.AssetsDir = filepath.Join(cfg.DataDir, "assets")
	}
	if cfg.SoundsDir == "" {
		cfg.SoundsDir = filepath.Join(cfg.DataDir, "sounds")
	}

	return cfg, nil
}
