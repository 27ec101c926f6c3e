package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/pinchsign/internal/app"
	"github.com/ayusman/pinchsign/internal/capture"
	"github.com/ayusman/pinchsign/internal/config"
	"github.com/ayusman/pinchsign/internal/detector"
	"github.com/ayusman/pinchsign/internal/server"
	"github.com/ayusman/pinchsign/internal/server/api"
	"github.com/ayusman/pinchsign/internal/tray"
	"github.com/ayusman/pinchsign/internal/upload"
)

type runOptions struct {
	record string
	video  string
	camera int
	addr   string
	noTray bool
	mock   bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{camera: -1}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Capture signatures from the camera and serve the signing pad",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if opts.camera >= 0 {
				cfg.CameraID = opts.camera
			}
			if opts.addr != "" {
				cfg.Addr = opts.addr
			}
			if opts.video != "" {
				cfg.Video = opts.video
			}
			if opts.noTray {
				cfg.Tray = false
			}
			if opts.mock {
				cfg.Detector.Mock = true
			}
			return runApp(cmd.Context(), root, cfg, opts.record)
		},
	}

	cmd.Flags().StringVar(&opts.record, "record", "", "append detector results to this JSONL file for replay")
	cmd.Flags().StringVar(&opts.video, "video", "", "read frames from a video file instead of the camera")
	cmd.Flags().IntVar(&opts.camera, "camera", -1, "camera device id (default from config)")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address (default from config)")
	cmd.Flags().BoolVar(&opts.noTray, "no-tray", false, "run without the system tray")
	cmd.Flags().BoolVar(&opts.mock, "mock-detector", false, "use a detector that never sees a hand")
	return cmd
}

func runApp(ctx context.Context, root *rootOptions, cfg config.Config, record string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	st, err := root.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	det, err := newDetector(cfg, record)
	if err != nil {
		return err
	}

	var cam capture.Camera
	if cfg.Video != "" {
		cam = capture.NewVideoFile(cfg.Video)
	} else {
		cam = capture.NewCamera(cfg.CameraID)
	}

	hooks := upload.NewManager(cfg.HooksDir)
	if err := hooks.Discover(); err != nil {
		log.Printf("Hook discovery failed: %v", err)
	}
	log.Printf("Discovered %d upload hooks in %s", len(hooks.List()), cfg.HooksDir)

	var a *app.App
	hub := server.NewEventHub(func() any { return a.State() })
	a = app.New(app.Config{
		Store:      st,
		Camera:     cam,
		Detector:   det,
		Hooks:      hooks,
		Executor:   upload.NewExecutor(cfg.HookTimeout()),
		HookConfig: cfg.HookConfig,
		ExportDir:  cfg.ExportDir(),
		FPS:        cfg.FPS,
		Events:     hub,
	})
	defer a.Close()

	if err := a.Start(); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}

	srv := server.New(server.Config{
		StaticDir:  findWebDir(cfg),
		Store:      st,
		Controller: a,
		Preview:    a,
		Hooks:      hooks,
		Events:     hub,
	}).Handler(cfg.Addr)

	go func() {
		log.Printf("Starting server on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server failed: %v", err)
			cancel()
		}
	}()
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		srv.Shutdown(shutdownCtx)
	}()

	if cfg.Tray {
		runTray(ctx, cancel, a, cfg.Addr)
		return nil
	}

	select {
	case <-ctx.Done():
	case <-a.Done():
		log.Println("Video finished; press Ctrl+C to exit")
		<-ctx.Done()
	}
	return nil
}

// newDetector picks MediaPipe, falling back to the mock detector, and
// wraps it in a recorder when record is set. Closing the detector closes
// the recording.
func newDetector(cfg config.Config, record string) (detector.Detector, error) {
	var det detector.Detector
	if cfg.Detector.Mock {
		det = detector.NewMockDetector()
	} else {
		dc := detector.DefaultConfig()
		dc.PythonPath = cfg.Detector.Python
		dc.ScriptPath = cfg.Detector.Script
		if mp, err := detector.NewMediaPipeDetector(dc); err == nil {
			det = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			det = detector.NewMockDetector()
		}
	}

	if record == "" {
		return det, nil
	}
	f, err := os.OpenFile(record, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		det.Close()
		return nil, fmt.Errorf("open recording: %w", err)
	}
	log.Printf("Recording detector results to %s", record)
	return detector.NewRecordingDetector(det, f), nil
}

func runTray(ctx context.Context, cancel context.CancelFunc, a *app.App, addr string) {
	t := tray.New()
	t.OnReset(a.Reset)
	t.OnClear(a.Clear)
	t.OnSave(func() {
		if _, err := a.Save(ctx, api.SaveRequest{}); err != nil {
			log.Printf("Save failed: %v", err)
		}
	})
	t.OnOpen(func() {
		if err := openBrowser(localURL(addr)); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	})
	t.OnQuit(cancel)

	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case <-ticker.C:
				st := a.State()
				t.SetStatus(tray.StatusLine(st), st.SaveAvailable)
			}
		}
	}()

	t.Run()
}

func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// findWebDir returns the configured static directory, or the first of
// "web", "../web" and <data-dir>/web that exists.
func findWebDir(cfg config.Config) string {
	if cfg.StaticDir != "" {
		return cfg.StaticDir
	}
	for _, p := range []string{"web", "../web", filepath.Join(cfg.DataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
