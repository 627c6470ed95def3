package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeDocument(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestRun_Render(t *testing.T) {
	t.Parallel()

	path := writeDocument(t, `
number "n" {
  value = 6 * 7
}
`)
	out := &bytes.Buffer{}

	require.NoError(t, run(context.Background(), out, io.Discard, []string{"render", path}))
	require.Contains(t, out.String(), "doc.n:")
	require.Contains(t, out.String(), "value: 42")
}

func TestRun_InvalidDocument(t *testing.T) {
	t.Parallel()

	path := writeDocument(t, `
number "n" {
  value = 
`)
	err := run(context.Background(), &bytes.Buffer{}, io.Discard, []string{"render", path})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load document")
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, io.Discard, []string{"-h"}))
	require.Contains(t, out.String(), "Usage:")
}
