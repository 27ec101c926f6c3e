package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/pinchsign/internal/export"
	"github.com/ayusman/pinchsign/internal/store"
	"github.com/ayusman/pinchsign/testdata"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	data, err := testdata.RecordingBytes(testdata.Signature)
	require.NoError(t, err)
	rec := filepath.Join(dir, "session.jsonl")
	require.NoError(t, os.WriteFile(rec, data, 0644))

	out := filepath.Join(dir, "out")
	stdout, err := execute(t, "--data-dir", dir, "replay", rec, "--out", out, "--quiet")
	require.NoError(t, err)
	assert.Contains(t, stdout, "29 frames")

	for _, name := range []string{export.RasterFile, export.VectorFile, export.CoordinatesFile} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	coords, err := os.ReadFile(filepath.Join(out, export.CoordinatesFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(coords), "(0.5,0.5), "))
}

func TestReplayCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "--data-dir", t.TempDir(), "replay", "/nonexistent.jsonl")
	assert.Error(t, err)
}

func TestSignaturesCommands(t *testing.T) {
	dir := t.TempDir()

	stdout, err := execute(t, "--data-dir", dir, "signatures", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No signatures found.")

	st, err := store.New(filepath.Join(dir, "pinchsign.db"))
	require.NoError(t, err)
	require.NoError(t, st.Signatures().Create(&store.Signature{
		ID:          "abc",
		Username:    "ada",
		PNG:         []byte("png"),
		SVG:         "<svg/>",
		Coordinates: "(0.5,0.5), ",
		Thumbnail:   []byte("thumb"),
		Segments:    7,
		Width:       640,
		Height:      480,
	}))
	st.Close()

	stdout, err = execute(t, "--data-dir", dir, "signatures", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "abc")
	assert.Contains(t, stdout, "ada")

	out := filepath.Join(dir, "export")
	_, err = execute(t, "--data-dir", dir, "sig", "export", "abc", "-o", out)
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(out, export.VectorFile))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(got))
	assert.FileExists(t, filepath.Join(out, "thumbnail.png"))

	_, err = execute(t, "--data-dir", dir, "signatures", "export", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
