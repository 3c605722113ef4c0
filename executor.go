package docconv

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/alnah/go-docconv/internal/fileutil"
	"github.com/alnah/go-docconv/internal/procutil"
)

// maxDiagnosticBytes caps the stdout/stderr captured per attempt. Engines
// can be extremely chatty on failure; only the head is useful.
const maxDiagnosticBytes = 4 << 10

// exitCodeUnknown marks attempts where the process never ran to completion.
const exitCodeUnknown = -1

// engineExecutor abstracts single-attempt execution so the fallback
// coordinator can be tested without spawning real processes.
type engineExecutor interface {
	Execute(ctx context.Context, engine EngineDescriptor, ws *Workspace, targetFormat string, timeout time.Duration) ExecutionAttempt
}

// Compile-time interface check.
var _ engineExecutor = (*processExecutor)(nil)

// processExecutor runs one external engine process per call. It never
// retries; retry and fallback policy live one layer up.
type processExecutor struct {
	log logr.Logger
}

func newProcessExecutor(log logr.Logger) *processExecutor {
	return &processExecutor{log: log}
}

// Execute spawns the engine with the expanded argument vector, waits for
// exit or deadline, and reports a tagged outcome. On timeout or caller
// cancellation the whole process tree is killed, not only the direct child.
// No OS process or handle survives this call on any path: every started
// process is reaped before returning.
func (e *processExecutor) Execute(ctx context.Context, engine EngineDescriptor, ws *Workspace, targetFormat string, timeout time.Duration) ExecutionAttempt {
	attempt := ExecutionAttempt{
		Engine:    engine.Name,
		StartTime: time.Now(),
		ExitCode:  exitCodeUnknown,
	}

	args := engine.buildArgs(ws.InputPath, ws.OutputDir, targetFormat)
	// Argument vector straight to the OS. No shell, no injection surface.
	cmd := exec.Command(engine.Command, args...) // #nosec G204 -- command and args come from operator config
	cmd.Dir = ws.OutputDir
	diag := &boundedBuffer{max: maxDiagnosticBytes}
	cmd.Stdout = diag
	cmd.Stderr = diag
	procutil.Isolate(cmd)

	e.log.V(1).Info("starting engine",
		"operation", ws.OperationID, "engine", engine.Name, "timeout", timeout)

	if err := cmd.Start(); err != nil {
		attempt.EndTime = time.Now()
		attempt.Outcome = OutcomeIOError
		attempt.Diagnostic = truncateDiagnostic(err.Error())
		return attempt
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var waitErr error
	// Recorded at the select, not re-derived afterwards: by the time the
	// kill and reap finish, the context may have expired too, and a genuine
	// per-attempt timeout must not get relabeled as a cancellation.
	interruptReason := ""

	select {
	case waitErr = <-done:
	case <-timer.C:
		interruptReason = "deadline exceeded"
		procutil.KillTree(cmd.Process.Pid)
		<-done // reap
	case <-ctx.Done():
		interruptReason = "canceled by caller"
		procutil.KillTree(cmd.Process.Pid)
		<-done // reap
	}

	attempt.EndTime = time.Now()

	if interruptReason != "" {
		attempt.Outcome = OutcomeTimeout
		attempt.Diagnostic = truncateDiagnostic(interruptReason + joinDiag(diag.String()))
		return attempt
	}

	attempt.Diagnostic = truncateDiagnostic(diag.String())

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			attempt.ExitCode = exitErr.ExitCode()
			attempt.Outcome = OutcomeCrashed
		} else {
			attempt.Outcome = OutcomeIOError
			attempt.Diagnostic = truncateDiagnostic(waitErr.Error() + joinDiag(diag.String()))
		}
		return attempt
	}

	attempt.ExitCode = 0

	// Exit 0 alone does not prove a conversion: some engines exit cleanly
	// after producing nothing. Success requires a non-empty output file.
	outputPath, err := fileutil.FindOutput(ws.OutputDir, normalizeFormat(targetFormat))
	if err != nil {
		attempt.Outcome = OutcomeCrashed
		attempt.Diagnostic = truncateDiagnostic(err.Error() + joinDiag(diag.String()))
		return attempt
	}

	attempt.Outcome = OutcomeSuccess
	attempt.OutputPath = outputPath
	return attempt
}

// joinDiag prefixes captured engine output with a separator, or returns
// nothing when the engine was silent.
func joinDiag(s string) string {
	if s == "" {
		return ""
	}
	return ": " + s
}

// truncateDiagnostic bounds a diagnostic string for attempt records.
func truncateDiagnostic(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxDiagnosticBytes {
		return s
	}
	return s[:maxDiagnosticBytes] + " [truncated]"
}

// boundedBuffer keeps the first max bytes written and drops the rest.
// Safe for concurrent writes since stdout and stderr share it.
type boundedBuffer struct {
	mu        sync.Mutex
	buf       []byte
	max       int
	truncated bool
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if room := b.max - len(b.buf); room > 0 {
		if len(p) <= room {
			b.buf = append(b.buf, p...)
		} else {
			b.buf = append(b.buf, p[:room]...)
			b.truncated = true
		}
	} else if len(p) > 0 {
		b.truncated = true
	}
	// Report full consumption so the engine never blocks on our cap.
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.truncated {
		return string(b.buf) + " [truncated]"
	}
	return string(b.buf)
}
