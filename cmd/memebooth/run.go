package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/renderix/memebooth/internal/app"
	"github.com/renderix/memebooth/internal/engine"
	"github.com/renderix/memebooth/internal/server"
	"github.com/renderix/memebooth/internal/store"
	"github.com/renderix/memebooth/internal/tray"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the booth: camera pipeline, HTTP server, and tray",
	RunE:  runBooth,
}

func init() {
	flags := runCmd.Flags()
	flags.String("addr", "", "HTTP listen address (overrides MEMEBOOTH_ADDR)")
	flags.String("config", "", "meme config file; overrides the database as entry source")
	flags.Int("camera", -1, "camera device id (overrides MEMEBOOTH_CAMERA_ID)")
	flags.Bool("no-tray", false, "run headless without the system tray")
}

func runBooth(cmd *cobra.Command, args []string) error {
	cfg, err := loadEnvConfig()
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Addr = v
	}
	if v, _ := cmd.Flags().GetString("config"); v != "" {
		cfg.ConfigPath = v
	}
	if v, _ := cmd.Flags().GetInt("camera"); v >= 0 {
		cfg.CameraID = v
	}
	if v, _ := cmd.Flags().GetBool("no-tray"); v {
		cfg.NoTray = true
	}

	fmt.Println("MemeBooth - Gesture-Triggered Meme Overlays")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(filepath.Join(cfg.DataDir, "memebooth.db"))
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	booth := app.New(app.Config{
		Store:        st,
		ConfigPath:   cfg.ConfigPath,
		AssetsDir:    cfg.AssetsDir,
		SoundsDir:    cfg.SoundsDir,
		CameraID:     cfg.CameraID,
		MotionThresh: cfg.MotionThresh,
		Mirror:       cfg.Mirror,
		Tuning:       engine.DefaultTuning(),
	})

	if _, _, err := booth.LoadMemes(); err != nil {
		return err
	}

	if err := booth.Start(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	defer booth.Stop()
	booth.SetEnabled(true)

	srv := server.New(server.Config{
		StaticDir: findStaticDir(cfg),
		Store:     st,
		Engine:    booth.Engine(),
		Frames:    booth,
		Reload:    booth.LoadMemes,
	})

	go func() {
		log.Printf("Starting server on %s", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if cfg.NoTray {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		return nil
	}

	t := tray.New()
	t.OnToggle(booth.SetEnabled)
	t.OnReload(func() {
		if _, _, err := booth.LoadMemes(); err != nil {
			log.Printf("Reload failed: %v", err)
		}
	})
	t.OnDashboard(func() { openBrowser(dashboardURL(cfg.Addr)) })

	go func() {
		last := ""
		for range time.Tick(time.Second) {
			if name := booth.LastEntered(); name != last {
				last = name
				t.SetLastMeme(name)
			}
		}
	}()

	t.Run() // blocks until Quit

	return nil
}

// findStaticDir searches for the dashboard web directory in common locations.
func findStaticDir(cfg envConfig) string {
	if cfg.StaticDir != "" {
		return cfg.StaticDir
	}

	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(cfg.DataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

func dashboardURL(addr string) string {
	if addr != "" && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// openBrowser opens the URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
