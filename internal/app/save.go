package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ayusman/pinchsign/internal/export"
	"github.com/ayusman/pinchsign/internal/server/api"
	"github.com/ayusman/pinchsign/internal/store"
	"github.com/ayusman/pinchsign/internal/upload"
)

// Save exports the current stroke, archives it and, for register and
// validate purposes, hands it to an upload hook. Username and hook fall
// back to the stored settings. A failing hook is recorded as a failed
// delivery, not returned as an error.
func (a *App) Save(ctx context.Context, req api.SaveRequest) (*api.SaveResult, error) {
	st := a.config.Store
	if st == nil {
		return nil, errors.New("no signature store configured")
	}
	if req.Purpose == "" {
		req.Purpose = store.PurposeCapture
	}

	settings := st.Settings()
	if req.Username == "" {
		name, err := settings.GetDefault(store.SettingUsername, "")
		if err != nil {
			return nil, fmt.Errorf("read username setting: %w", err)
		}
		req.Username = name
	}

	var hook *upload.Hook
	if req.Purpose != store.PurposeCapture {
		if req.Username == "" {
			return nil, api.ErrUsernameRequired
		}
		if req.Hook == "" {
			name, err := settings.GetDefault(store.SettingHook, "")
			if err != nil {
				return nil, fmt.Errorf("read hook setting: %w", err)
			}
			req.Hook = name
		}
		if req.Hook != "" {
			h, err := a.resolveHook(req.Hook, string(req.Purpose))
			if err != nil {
				return nil, err
			}
			hook = h
		}
	}

	var art *export.Artifacts
	var saveErr error
	a.Do(func() {
		art, saveErr = a.sess.Save()
		if saveErr == nil {
			a.storeState()
		}
	})
	if saveErr != nil {
		return nil, saveErr
	}
	if art == nil {
		return nil, errors.New("application is closed")
	}

	sig, err := a.archive(req, art)
	if err != nil {
		return nil, err
	}
	res := &api.SaveResult{Signature: sig}

	if hook != nil {
		res.Delivery = a.deliver(ctx, hook, req, sig, art)
	}
	if a.config.Events != nil {
		a.config.Events.Publish("archived", res)
	}
	return res, nil
}

func (a *App) resolveHook(name, action string) (*upload.Hook, error) {
	if a.config.Hooks == nil || a.config.Executor == nil {
		return nil, fmt.Errorf("%w: %s", upload.ErrHookNotFound, name)
	}
	h, err := a.config.Hooks.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, name)
	}
	if !h.Supports(action) {
		return nil, fmt.Errorf("%w: %s does not handle %q", upload.ErrUnsupportedAction, name, action)
	}
	return h, nil
}

// archive stores the artifacts with a thumbnail and the stroke.
func (a *App) archive(req api.SaveRequest, art *export.Artifacts) (*store.Signature, error) {
	thumb, err := export.ThumbnailPNG(art.PNG, export.ThumbnailWidth)
	if err != nil {
		log.Printf("Thumbnail failed: %v", err)
		thumb = nil
	}
	stroke, err := json.Marshal(art.Segments)
	if err != nil {
		return nil, fmt.Errorf("encode stroke: %w", err)
	}

	sig := &store.Signature{
		ID:          uuid.New().String(),
		Username:    req.Username,
		Purpose:     req.Purpose,
		PNG:         art.PNG,
		SVG:         string(art.SVG),
		Coordinates: art.Coordinates,
		Thumbnail:   thumb,
		Stroke:      stroke,
		Segments:    len(art.Segments),
		Width:       art.Width,
		Height:      art.Height,
	}
	if err := a.config.Store.Signatures().Create(sig); err != nil {
		return nil, fmt.Errorf("archive signature: %w", err)
	}
	log.Printf("Saved signature %s (%d segments)", sig.ID, sig.Segments)
	return sig, nil
}

// deliver writes the artifacts to disk, runs the hook and records the
// outcome.
func (a *App) deliver(ctx context.Context, hook *upload.Hook, req api.SaveRequest, sig *store.Signature, art *export.Artifacts) *store.Delivery {
	d := &store.Delivery{
		SignatureID: sig.ID,
		Hook:        hook.Manifest.Name,
		Action:      string(req.Purpose),
	}

	resp, err := a.runHook(ctx, hook, req, sig, art)
	switch {
	case err != nil:
		d.Message = err.Error()
	case !resp.Success:
		d.Message = resp.Error
	default:
		d.Success = true
		d.Message = string(resp.Data)
	}
	if !d.Success {
		log.Printf("Hook %s %s failed: %s", d.Hook, d.Action, d.Message)
	}

	if err := a.config.Store.Deliveries().Create(d); err != nil {
		log.Printf("Failed to record delivery: %v", err)
	}
	return d
}

func (a *App) runHook(ctx context.Context, hook *upload.Hook, req api.SaveRequest, sig *store.Signature, art *export.Artifacts) (*upload.Response, error) {
	dir := filepath.Join(a.config.ExportDir, sig.ID)
	if err := art.WriteDir(dir); err != nil {
		return nil, err
	}

	var cfg json.RawMessage
	if a.config.HookConfig != nil {
		if c := a.config.HookConfig(hook.Manifest.Name); c != nil {
			data, err := json.Marshal(c)
			if err != nil {
				return nil, fmt.Errorf("encode hook config: %w", err)
			}
			cfg = data
		}
	}

	return a.config.Executor.Execute(ctx, hook, &upload.Request{
		Action:          string(req.Purpose),
		SignatureID:     sig.ID,
		Username:        req.Username,
		PNGPath:         filepath.Join(dir, export.RasterFile),
		SVGPath:         filepath.Join(dir, export.VectorFile),
		CoordinatesPath: filepath.Join(dir, export.CoordinatesFile),
		Width:           art.Width,
		Height:          art.Height,
		Config:          cfg,
	})
}
