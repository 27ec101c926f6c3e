package tray

import (
	"fmt"

	"github.com/ayusman/pinchsign/internal/gesture"
	"github.com/ayusman/pinchsign/internal/session"
)

// StatusLine summarizes a session state for the menu.
func StatusLine(st session.State) string {
	switch st.Phase {
	case gesture.PhaseIdle:
		if !st.Calibrated {
			return "Not calibrated"
		}
	case gesture.PhaseCalibrating:
		return "Calibrating..."
	case gesture.PhaseDragging:
		return fmt.Sprintf("Signing (%d segments)", st.SegmentCount)
	}
	if st.SegmentCount == 0 {
		return "Ready"
	}
	return fmt.Sprintf("Ready (%d segments)", st.SegmentCount)
}
