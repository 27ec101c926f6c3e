package app

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/pinchsign/internal/capture"
	"github.com/ayusman/pinchsign/internal/detector"
	"github.com/ayusman/pinchsign/internal/export"
	"github.com/ayusman/pinchsign/internal/gesture"
	"github.com/ayusman/pinchsign/internal/server/api"
	"github.com/ayusman/pinchsign/internal/store"
	"github.com/ayusman/pinchsign/internal/upload"
)

type recordingPublisher struct {
	kinds chan string
}

func (p *recordingPublisher) Publish(kind string, _ any) {
	select {
	case p.kinds <- kind:
	default:
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// signingDetector scripts a calibrate, drag, release sequence.
func signingDetector() *detector.MockDetector {
	d := detector.NewMockDetector()
	for i := 0; i < 5; i++ {
		d.Enqueue(detector.PinchResult(0.5, 0.5))
	}
	for i := 0; i <= 10; i++ {
		d.Enqueue(detector.PinchResult(0.5+float64(i)*0.01, 0.5))
	}
	d.SetHands([]detector.HandLandmarks{detector.OpenHandLandmarks(0.6, 0.5)})
	return d
}

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	if cfg.Camera == nil {
		cfg.Camera = capture.NewBlankCamera(3)
	}
	if cfg.Detector == nil {
		cfg.Detector = signingDetector()
	}
	cfg.FPS = 100
	cfg.TickInterval = 2 * time.Millisecond
	cfg.SkipMotionGate = true

	a := New(cfg)
	t.Cleanup(a.Close)
	return a
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestApp_SignAndSave(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := newTestStore(t)
	pub := &recordingPublisher{kinds: make(chan string, 1024)}
	a := newTestApp(t, Config{Store: s, Events: pub})

	require.NoError(t, a.Start())
	waitFor(t, "release", func() bool { return a.State().SaveAvailable })
	a.Stop()

	st := a.State()
	assert.True(t, st.Calibrated)
	assert.Equal(t, gesture.PhaseReleased, st.Phase)
	assert.Greater(t, st.SegmentCount, 0)
	assert.False(t, st.TickPending)

	jpeg, ok := a.Preview()
	require.True(t, ok)
	assert.Equal(t, []byte{0xff, 0xd8}, jpeg[:2])

	res, err := a.Save(context.Background(), api.SaveRequest{})
	require.NoError(t, err)
	assert.Nil(t, res.Delivery)
	assert.Equal(t, store.PurposeCapture, res.Signature.Purpose)
	assert.Equal(t, st.SegmentCount, res.Signature.Segments)
	assert.False(t, a.State().SaveAvailable)

	got, err := s.Signatures().GetByID(res.Signature.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, got.PNG)
	assert.NotEmpty(t, got.Thumbnail)
	assert.Contains(t, got.SVG, "translate(640,0) scale(-1,1)")

	seen := map[string]bool{}
	for len(pub.kinds) > 0 {
		seen[<-pub.kinds] = true
	}
	for _, k := range []string{"calibrated", "drag_started", "tick", "released", "saved", "archived"} {
		assert.True(t, seen[k], "missing event %s", k)
	}
}

func TestApp_ResetAndClear(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a := newTestApp(t, Config{Store: newTestStore(t)})
	require.NoError(t, a.Start())
	waitFor(t, "release", func() bool { return a.State().SaveAvailable })
	a.Stop()

	a.Clear()
	st := a.State()
	assert.Zero(t, st.SegmentCount)
	assert.True(t, st.Calibrated)

	a.Reset()
	st = a.State()
	assert.False(t, st.Calibrated)
	assert.Nil(t, st.Region)
}

func TestApp_SaveValidation(t *testing.T) {
	s := newTestStore(t)
	a := newTestApp(t, Config{Store: s, Hooks: upload.NewManager(t.TempDir()), Executor: upload.NewExecutor(0)})

	_, err := a.Save(context.Background(), api.SaveRequest{Purpose: store.PurposeRegister})
	assert.ErrorIs(t, err, api.ErrUsernameRequired)

	_, err = a.Save(context.Background(), api.SaveRequest{Purpose: store.PurposeRegister, Username: "ada", Hook: "missing"})
	assert.ErrorIs(t, err, upload.ErrHookNotFound)

	n, err := s.Signatures().Count()
	require.NoError(t, err)
	assert.Zero(t, n, "rejected saves must not archive")

	require.NoError(t, s.Settings().Set(store.SettingUsername, "grace"))
	res, err := a.Save(context.Background(), api.SaveRequest{Purpose: store.PurposeValidate})
	require.NoError(t, err)
	assert.Equal(t, "grace", res.Signature.Username)
	assert.Nil(t, res.Delivery, "no hook configured")
}

func TestApp_SaveWithHook(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	hooksDir := t.TempDir()
	dir := filepath.Join(hooksDir, "echo")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, upload.ManifestFile),
		[]byte(`{"name":"echo","executable":"run.sh","actions":["register"]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.sh"),
		[]byte("#!/bin/sh\ncat > /dev/null\necho '{\"success\":true,\"data\":{\"status\":\"registered\"}}'\n"), 0755))

	hooks := upload.NewManager(hooksDir)
	require.NoError(t, hooks.Discover())

	s := newTestStore(t)
	exportDir := t.TempDir()
	a := newTestApp(t, Config{
		Store:     s,
		Hooks:     hooks,
		Executor:  upload.NewExecutor(5 * time.Second),
		ExportDir: exportDir,
	})

	_, err := a.Save(context.Background(), api.SaveRequest{Purpose: store.PurposeValidate, Username: "ada", Hook: "echo"})
	assert.ErrorIs(t, err, upload.ErrUnsupportedAction)

	res, err := a.Save(context.Background(), api.SaveRequest{Purpose: store.PurposeRegister, Username: "ada", Hook: "echo"})
	require.NoError(t, err)
	require.NotNil(t, res.Delivery)
	assert.True(t, res.Delivery.Success, res.Delivery.Message)
	assert.JSONEq(t, `{"status":"registered"}`, res.Delivery.Message)

	for _, name := range []string{export.RasterFile, export.VectorFile, export.CoordinatesFile} {
		assert.FileExists(t, filepath.Join(exportDir, res.Signature.ID, name))
	}

	ds, err := s.Deliveries().ListBySignature(res.Signature.ID)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "register", ds[0].Action)
}

func TestApp_DoAfterClose(t *testing.T) {
	a := New(Config{Camera: capture.NewBlankCamera(1)})
	a.Close()

	ran := false
	a.Do(func() { ran = true })
	assert.False(t, ran)
	assert.Zero(t, a.State().SegmentCount)

	a.Close()
}
