package app

import (
	"errors"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchsign/internal/capture"
	"github.com/ayusman/pinchsign/internal/detector"
	"github.com/ayusman/pinchsign/internal/session"
)

// runPipeline reads frames at the configured rate until stop is closed or
// a finite source ends.
//
// Per frame:
//  1. Gate detection on motion, unless a drag is in progress
//  2. Detect landmarks off the session loop
//  3. Hand the result to the session on the loop and snapshot its state
//  4. Compose the mirrored preview from the frame, the ink and the overlay
//
// A still frame reuses the previous detection result, so a held pinch
// keeps counting toward calibration.
func (a *App) runPipeline(stop <-chan struct{}) {
	defer a.pipe.Done()

	ticker := time.NewTicker(time.Second / time.Duration(a.config.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		frame, err := a.config.Camera.ReadFrame()
		if errors.Is(err, capture.ErrEndOfStream) {
			log.Println("Frame source ended")
			a.endOnce.Do(func() { close(a.ended) })
			return
		}
		if err != nil {
			continue
		}

		a.processFrame(frame)
		frame.Close()
	}
}

// processFrame runs one frame through detection and the session.
func (a *App) processFrame(frame *gocv.Mat) {
	if a.config.SkipMotionGate || a.dragging.Load() || a.gate.Admit(frame) {
		res, err := a.config.Detector.Detect(frame)
		if err != nil {
			log.Printf("Detection error: %v", err)
			res = detector.Result{}
		}
		a.lastResult = res
	}

	res := a.lastResult
	var st session.State
	a.Do(func() {
		a.sess.HandleFrame(res)
		a.storeState()
		st = *a.state.Load()
	})

	ink, err := a.surf.CloneMat()
	if err != nil {
		ink.Close()
		return
	}
	defer ink.Close()

	buf, err := composePreview(*frame, ink, st.Overlay)
	if err != nil {
		log.Printf("Preview error: %v", err)
		return
	}
	a.preview.Store(&buf)
}
