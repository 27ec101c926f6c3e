package app

import (
	"fmt"

	"github.com/ayusman/pinchsign/internal/capture"
	"github.com/ayusman/pinchsign/internal/detector"
	"github.com/ayusman/pinchsign/internal/export"
	"github.com/ayusman/pinchsign/internal/painter"
	"github.com/ayusman/pinchsign/internal/scheduler"
	"github.com/ayusman/pinchsign/internal/session"
	"github.com/ayusman/pinchsign/internal/surface"
)

// ReplayOptions tunes a headless replay.
type ReplayOptions struct {
	Painter painter.Config
	// Memory draws on an in-memory canvas instead of a gocv Mat.
	Memory bool
	// Progress is called after each frame with the frame index.
	Progress func(i int)
}

// Replay feeds recorded frame results through a fresh session, running one
// animation tick per frame, and exports the result.
func Replay(results []detector.Result, opts ReplayOptions) (*export.Artifacts, session.State, error) {
	var surf surface.Surface
	if opts.Memory {
		surf = surface.NewMemory(capture.StandardWidth, capture.StandardHeight)
	} else {
		surf = surface.NewMatSurface(capture.StandardWidth, capture.StandardHeight)
	}
	defer surf.Close()

	sched := scheduler.NewManual()
	sess := session.New(session.Options{
		Painter:   opts.Painter,
		Scheduler: sched,
		Surface:   surf,
	})

	for i, res := range results {
		sess.HandleFrame(res)
		sched.Step()
		if opts.Progress != nil {
			opts.Progress(i)
		}
	}

	st := sess.Snapshot()
	art, err := sess.Save()
	if err != nil {
		return nil, st, fmt.Errorf("replay: %w", err)
	}
	return art, st, nil
}
