package docconv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Directory layout and permissions for workspaces. 0700 keeps one request's
// documents unreadable to other users on shared hosts.
const (
	workspacePrefix = "op-"
	workspacePerm   = 0o700
)

// fallbackFilename replaces names that sanitize to nothing usable.
const fallbackFilename = "document"

// Workspace is an isolated filesystem scope bound to exactly one request:
// an input directory holding the source file and an output directory the
// engine writes into. It is owned exclusively by the handling goroutine.
type Workspace struct {
	OperationID string
	Root        string
	InputDir    string
	OutputDir   string
	InputPath   string // sanitized original filename under InputDir
}

// WriteInput stores the request's source bytes at InputPath.
func (w *Workspace) WriteInput(data []byte) error {
	if err := os.WriteFile(w.InputPath, data, 0o600); err != nil {
		return fmt.Errorf("%w: writing input: %v", ErrWorkspaceIO, err)
	}
	return nil
}

// WorkspaceManager creates and destroys workspaces under a single temp root.
type WorkspaceManager struct {
	tempRoot string
}

// NewWorkspaceManager creates the temp root if needed and returns a manager
// rooted there. The root is resolved to an absolute path so containment
// checks are not fooled by a working-directory change.
func NewWorkspaceManager(tempRoot string) (*WorkspaceManager, error) {
	if tempRoot == "" {
		return nil, fmt.Errorf("%w: empty temp root", ErrWorkspaceIO)
	}
	abs, err := filepath.Abs(tempRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving temp root: %v", ErrWorkspaceIO, err)
	}
	if err := os.MkdirAll(abs, workspacePerm); err != nil {
		return nil, fmt.Errorf("%w: creating temp root: %v", ErrWorkspaceIO, err)
	}
	return &WorkspaceManager{tempRoot: abs}, nil
}

// TempRoot returns the absolute root all workspaces live under.
func (m *WorkspaceManager) TempRoot() string {
	return m.tempRoot
}

// Create builds the input/output directory pair for one operation and
// returns the workspace. The operation root is created with os.Mkdir so a
// duplicate operation ID fails instead of silently sharing a workspace.
func (m *WorkspaceManager) Create(operationID, originalFilename string) (*Workspace, error) {
	if operationID == "" {
		return nil, ErrEmptyOperationID
	}
	if originalFilename == "" {
		return nil, ErrEmptyFilename
	}

	// The operation ID becomes a path component, so it gets the same
	// sanitization as filenames.
	root := filepath.Join(m.tempRoot, workspacePrefix+SanitizeFilename(operationID))
	inputDir := filepath.Join(root, "input")
	outputDir := filepath.Join(root, "output")
	inputPath := filepath.Join(inputDir, SanitizeFilename(originalFilename))

	// Containment check: defense against a sanitization gap ever letting a
	// generated path escape the temp root.
	for _, p := range []string{root, inputDir, outputDir, inputPath} {
		if !pathWithin(m.tempRoot, p) {
			return nil, fmt.Errorf("%w: %s", ErrPathEscape, p)
		}
	}

	if err := os.Mkdir(root, workspacePerm); err != nil {
		return nil, fmt.Errorf("%w: creating workspace: %v", ErrWorkspaceIO, err)
	}
	for _, dir := range []string{inputDir, outputDir} {
		if err := os.Mkdir(dir, workspacePerm); err != nil {
			_ = os.RemoveAll(root)
			return nil, fmt.Errorf("%w: creating workspace: %v", ErrWorkspaceIO, err)
		}
	}

	return &Workspace{
		OperationID: operationID,
		Root:        root,
		InputDir:    inputDir,
		OutputDir:   outputDir,
		InputPath:   inputPath,
	}, nil
}

// Destroy recursively removes the workspace. It is idempotent: destroying a
// nil, already-destroyed, or never-created workspace is a no-op, so repeated
// or racing cleanup calls are safe.
func (m *WorkspaceManager) Destroy(ws *Workspace) error {
	if ws == nil || ws.Root == "" {
		return nil
	}
	if !pathWithin(m.tempRoot, ws.Root) {
		return fmt.Errorf("%w: refusing to remove %s", ErrPathEscape, ws.Root)
	}
	if err := os.RemoveAll(ws.Root); err != nil {
		return fmt.Errorf("%w: removing workspace: %v", ErrWorkspaceIO, err)
	}
	return nil
}

// SanitizeFilename makes a filename safe as a single path component while
// preserving everything else verbatim: spaces, parentheses, version tokens,
// and Unicode all survive, because downstream engines may embed the literal
// filename in output metadata and changing it alters conversion output.
//
// Only path separators, path-traversal names, control characters, and
// characters invalid on common filesystems are replaced. The function is
// deterministic and idempotent: SanitizeFilename(SanitizeFilename(x)) ==
// SanitizeFilename(x) for all x.
func SanitizeFilename(name string) string {
	// Keep only the last path element; both separator styles count so a
	// Windows-style upload name cannot smuggle directories.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	mapped := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return '_'
		case strings.ContainsRune(`<>:"/\|?*`, r):
			return '_'
		}
		return r
	}, name)

	// "." and ".." are path-special, not filenames.
	if mapped == "" || mapped == "." || mapped == ".." {
		return fallbackFilename
	}
	return mapped
}

// pathWithin reports whether path is root or lies under it.
func pathWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}
