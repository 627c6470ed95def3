// Package fsutil locates document sources on disk.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// DocumentExt is the extension of document source files.
const DocumentExt = ".hcl"

// FindDocuments returns the document files under root in lexical order.
// Directories and files whose names start with "." or "_" are skipped, so
// scratch copies and checked-out fixtures next to a document are ignored.
func FindDocuments(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && ignored(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && filepath.Ext(d.Name()) == DocumentExt {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

func ignored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
