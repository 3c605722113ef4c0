//go:build !windows

package docconv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
)

// shEngine wraps a shell script as an engine. The script receives the input
// path as $0 and the output directory as $1, so paths with spaces survive.
func shEngine(name string, priority int, script string, timeout time.Duration) EngineDescriptor {
	return EngineDescriptor{
		Name:     name,
		Priority: priority,
		Command:  "sh",
		Args:     []string{"-c", script, "{input}", "{outdir}"},
		Timeout:  timeout,
	}
}

// newTestWorkspace creates a workspace with input content already written.
func newTestWorkspace(t *testing.T, content string) *Workspace {
	t.Helper()
	mgr, err := NewWorkspaceManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewWorkspaceManager() error = %v", err)
	}
	ws, err := mgr.Create("op-exec", "doc.md")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := ws.WriteInput([]byte(content)); err != nil {
		t.Fatalf("WriteInput() error = %v", err)
	}
	return ws
}

func TestProcessExecutor_Success(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t, "# hello")
	exec := newProcessExecutor(logr.Discard())
	engine := shEngine("copier", 1, `cp "$0" "$1/out.pdf"`, 10*time.Second)

	attempt := exec.Execute(context.Background(), engine, ws, "pdf", engine.Timeout)

	if attempt.Outcome != OutcomeSuccess {
		t.Fatalf("Outcome = %q (diag %q), want success", attempt.Outcome, attempt.Diagnostic)
	}
	if attempt.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", attempt.ExitCode)
	}
	if filepath.Dir(attempt.OutputPath) != ws.OutputDir {
		t.Errorf("OutputPath %q not in output dir %q", attempt.OutputPath, ws.OutputDir)
	}
	if attempt.Engine != "copier" {
		t.Errorf("Engine = %q, want copier", attempt.Engine)
	}
	if attempt.Duration() < 0 {
		t.Errorf("Duration() = %v, want >= 0", attempt.Duration())
	}
}

func TestProcessExecutor_NonZeroExitIsCrashed(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t, "x")
	exec := newProcessExecutor(logr.Discard())
	engine := shEngine("broken", 1, `echo "conversion failed" >&2; exit 3`, 10*time.Second)

	attempt := exec.Execute(context.Background(), engine, ws, "pdf", engine.Timeout)

	if attempt.Outcome != OutcomeCrashed {
		t.Fatalf("Outcome = %q, want crashed", attempt.Outcome)
	}
	if attempt.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", attempt.ExitCode)
	}
	if !strings.Contains(attempt.Diagnostic, "conversion failed") {
		t.Errorf("Diagnostic = %q, want stderr captured", attempt.Diagnostic)
	}
}

func TestProcessExecutor_CleanExitWithoutOutputIsCrashed(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t, "x")
	exec := newProcessExecutor(logr.Discard())
	engine := shEngine("liar", 1, `exit 0`, 10*time.Second)

	attempt := exec.Execute(context.Background(), engine, ws, "pdf", engine.Timeout)

	if attempt.Outcome != OutcomeCrashed {
		t.Errorf("Outcome = %q, want crashed for exit 0 with no output", attempt.Outcome)
	}
	if attempt.OutputPath != "" {
		t.Errorf("OutputPath = %q, want empty", attempt.OutputPath)
	}
}

func TestProcessExecutor_EmptyOutputFileIsCrashed(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t, "x")
	exec := newProcessExecutor(logr.Discard())
	engine := shEngine("hollow", 1, `touch "$1/out.pdf"`, 10*time.Second)

	attempt := exec.Execute(context.Background(), engine, ws, "pdf", engine.Timeout)

	if attempt.Outcome != OutcomeCrashed {
		t.Errorf("Outcome = %q, want crashed for empty output file", attempt.Outcome)
	}
}

func TestProcessExecutor_TimeoutKillsProcess(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t, "x")
	exec := newProcessExecutor(logr.Discard())
	engine := shEngine("sleeper", 1, `sleep 30`, 10*time.Second)

	start := time.Now()
	attempt := exec.Execute(context.Background(), engine, ws, "pdf", 100*time.Millisecond)
	elapsed := time.Since(start)

	if attempt.Outcome != OutcomeTimeout {
		t.Fatalf("Outcome = %q, want timeout", attempt.Outcome)
	}
	if attempt.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", attempt.ExitCode)
	}
	if !strings.Contains(attempt.Diagnostic, "deadline exceeded") {
		t.Errorf("Diagnostic = %q, want deadline reason", attempt.Diagnostic)
	}
	// The kill must be prompt, not a wait for the child to finish.
	if elapsed > 5*time.Second {
		t.Errorf("Execute took %v, want prompt kill after timeout", elapsed)
	}
}

func TestProcessExecutor_TimeoutKillsProcessTree(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t, "x")
	exec := newProcessExecutor(logr.Discard())
	// The child spawns a grandchild that would outlive a naive single-pid
	// kill and write a marker file afterwards.
	marker := filepath.Join(t.TempDir(), "survivor")
	engine := EngineDescriptor{
		Name:    "spawner",
		Command: "sh",
		Args:    []string{"-c", `(sleep 1; touch "$1") & sleep 30`, "{input}", marker},
		Timeout: 10 * time.Second,
	}

	attempt := exec.Execute(context.Background(), engine, ws, "pdf", 100*time.Millisecond)
	if attempt.Outcome != OutcomeTimeout {
		t.Fatalf("Outcome = %q, want timeout", attempt.Outcome)
	}

	time.Sleep(1500 * time.Millisecond)
	if _, err := os.Stat(marker); err == nil {
		t.Error("grandchild survived the kill and wrote its marker file")
	}
}

func TestProcessExecutor_CancellationKillsProcess(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t, "x")
	exec := newProcessExecutor(logr.Discard())
	engine := shEngine("sleeper", 1, `sleep 30`, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	attempt := exec.Execute(ctx, engine, ws, "pdf", engine.Timeout)

	if attempt.Outcome != OutcomeTimeout {
		t.Fatalf("Outcome = %q, want timeout", attempt.Outcome)
	}
	if !strings.Contains(attempt.Diagnostic, "canceled by caller") {
		t.Errorf("Diagnostic = %q, want cancellation reason", attempt.Diagnostic)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Execute took %v after cancel, want prompt return", elapsed)
	}
}

// A per-attempt timeout whose kill-and-reap finishes after the caller's
// context has also expired is still a timeout, not a cancellation.
func TestProcessExecutor_TimeoutNotRelabeledAsCancellation(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t, "x")
	exec := newProcessExecutor(logr.Discard())
	engine := shEngine("sleeper", 1, `sleep 30`, 10*time.Second)

	// Context deadline lands right behind the attempt timeout, so it has
	// expired by the time the diagnostic is written.
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	attempt := exec.Execute(ctx, engine, ws, "pdf", 50*time.Millisecond)

	if attempt.Outcome != OutcomeTimeout {
		t.Fatalf("Outcome = %q, want timeout", attempt.Outcome)
	}
	if !strings.Contains(attempt.Diagnostic, "deadline exceeded") {
		t.Errorf("Diagnostic = %q, want the timeout reason", attempt.Diagnostic)
	}
	if strings.Contains(attempt.Diagnostic, "canceled by caller") {
		t.Errorf("Diagnostic = %q, timer-triggered kill relabeled as cancellation", attempt.Diagnostic)
	}
}

func TestProcessExecutor_MissingBinaryIsIOError(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t, "x")
	exec := newProcessExecutor(logr.Discard())
	engine := EngineDescriptor{
		Name:    "ghost",
		Command: "/nonexistent/docconv-test-binary",
		Args:    []string{"{input}"},
		Timeout: 10 * time.Second,
	}

	attempt := exec.Execute(context.Background(), engine, ws, "pdf", engine.Timeout)

	if attempt.Outcome != OutcomeIOError {
		t.Errorf("Outcome = %q, want io_error", attempt.Outcome)
	}
	if attempt.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", attempt.ExitCode)
	}
	if attempt.Diagnostic == "" {
		t.Error("Diagnostic is empty, want start failure message")
	}
}

func TestProcessExecutor_PrefersMatchingExtension(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t, "x")
	exec := newProcessExecutor(logr.Discard())
	engine := shEngine("multi", 1,
		`echo scratch > "$1/notes.txt"; echo result > "$1/out.pdf"`, 10*time.Second)

	attempt := exec.Execute(context.Background(), engine, ws, "pdf", engine.Timeout)

	if attempt.Outcome != OutcomeSuccess {
		t.Fatalf("Outcome = %q (diag %q), want success", attempt.Outcome, attempt.Diagnostic)
	}
	if filepath.Base(attempt.OutputPath) != "out.pdf" {
		t.Errorf("OutputPath = %q, want the .pdf file preferred", attempt.OutputPath)
	}
}

func TestBoundedBuffer_CapsCapture(t *testing.T) {
	t.Parallel()

	buf := &boundedBuffer{max: 8}

	n, err := buf.Write([]byte("0123456789"))
	if err != nil || n != 10 {
		t.Fatalf("Write() = (%d, %v), want (10, nil)", n, err)
	}
	if _, err := buf.Write([]byte("more")); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}

	got := buf.String()
	if !strings.HasPrefix(got, "01234567") {
		t.Errorf("String() = %q, want first 8 bytes kept", got)
	}
	if !strings.Contains(got, "[truncated]") {
		t.Errorf("String() = %q, want truncation marker", got)
	}
}

func TestTruncateDiagnostic(t *testing.T) {
	t.Parallel()

	if got := truncateDiagnostic("  short  "); got != "short" {
		t.Errorf("truncateDiagnostic = %q, want trimmed %q", got, "short")
	}

	long := strings.Repeat("a", maxDiagnosticBytes+100)
	got := truncateDiagnostic(long)
	if len(got) > maxDiagnosticBytes+len(" [truncated]") {
		t.Errorf("truncated length = %d, want <= %d", len(got), maxDiagnosticBytes+len(" [truncated]"))
	}
	if !strings.HasSuffix(got, "[truncated]") {
		t.Errorf("truncated diagnostic missing marker: %q", got[len(got)-20:])
	}
}
