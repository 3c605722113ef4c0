// Package fileutil provides file discovery and handover helpers for
// conversion workspaces.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrNoOutput = errors.New("no output file produced")
)

// FindOutput locates the engine's result file in dir. Engines name output
// files themselves (LibreOffice derives the name from the input), so the
// exact path is unknown in advance: files matching the target extension are
// preferred, otherwise any non-empty regular file counts. Helper artifacts
// (directories, dotfiles) are skipped.
func FindOutput(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading output dir: %w", err)
	}

	var withExt, others []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !NonEmptyFile(path) {
			continue
		}
		if ext != "" && strings.EqualFold(filepath.Ext(entry.Name()), "."+ext) {
			withExt = append(withExt, path)
		} else {
			others = append(others, path)
		}
	}

	sort.Strings(withExt)
	sort.Strings(others)

	if len(withExt) > 0 {
		return withExt[0], nil
	}
	if len(others) > 0 {
		return others[0], nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoOutput, dir)
}

// CopyFile copies src to dst, creating dst's directory if needed. The copy
// goes to a temporary sibling first and is renamed into place, so a reader
// never observes a half-written result file.
func CopyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- src comes from a validated workspace
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating destination dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".docconv-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("copying: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

// NonEmptyFile returns true if the path is a regular file with content.
// Success detection treats zero-byte engine output as no output at all.
func NonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}
