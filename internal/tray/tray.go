// Package tray provides a system tray interface for the pinchsign signing pad.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onReset func()
	onClear func()
	onSave  func()
	onOpen  func()
	onQuit  func()
	status  string
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
	menuSave   *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{status: "Not calibrated"}
}

// OnReset sets the callback for the Reset item.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnClear sets the callback for the Clear item.
func (t *Tray) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = fn
}

// OnSave sets the callback for the Save item.
func (t *Tray) OnSave(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSave = fn
}

// OnOpen sets the callback for the Open Signing Pad item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray loop.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Pinchsign")
	systray.SetTooltip("Pinchsign signing pad")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(t.status, "Session status")
	t.menuStatus.Disable()
	systray.AddSeparator()

	t.menuSave = systray.AddMenuItem("Save", "Save the current signature")
	t.menuSave.Disable()
	t.mu.Unlock()

	menuClear := systray.AddMenuItem("Clear", "Erase the stroke and keep the calibration")
	menuReset := systray.AddMenuItem("Reset", "Erase the stroke and recalibrate")
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Signing Pad...", "Open the preview in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Pinchsign")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuSave.ClickedCh:
				t.call(func() func() { return t.onSave })
			case <-menuClear.ClickedCh:
				t.call(func() func() { return t.onClear })
			case <-menuReset.ClickedCh:
				t.call(func() func() { return t.onReset })
			case <-menuOpen.ClickedCh:
				t.call(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// call runs the callback chosen by pick outside the lock.
func (t *Tray) call(pick func() func()) {
	t.mu.RLock()
	callback := pick()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.call(func() func() { return t.onQuit })
	systray.Quit()
}

// SetStatus updates the status line and whether Save is offered.
func (t *Tray) SetStatus(status string, saveAvailable bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = status
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(status)
	}
	if t.menuSave != nil {
		if saveAvailable {
			t.menuSave.Enable()
		} else {
			t.menuSave.Disable()
		}
	}
}

// Status returns the current status line.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}
