package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDocuments(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"b.hcl",
		"a.hcl",
		"notes.txt",
		"units/one.hcl",
		"units/.draft.hcl",
		"_fixtures/skip.hcl",
		".cache/skip.hcl",
	} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("number \"n\" {}\n"), 0o644))
	}

	got, err := FindDocuments(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "units", "one.hcl"),
	}, got)
}

func TestFindDocuments_MissingRoot(t *testing.T) {
	_, err := FindDocuments(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
