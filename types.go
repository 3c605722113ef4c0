package docconv

import (
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// Outcome classifies a single engine attempt.
type Outcome string

// Attempt outcomes. Exactly one is recorded per engine tried.
const (
	OutcomeSuccess Outcome = "success"  // exit 0 and a non-empty output file
	OutcomeTimeout Outcome = "timeout"  // per-attempt deadline hit, process tree killed
	OutcomeCrashed Outcome = "crashed"  // non-zero exit, or exit 0 with no output
	OutcomeIOError Outcome = "io_error" // process could not be started
)

// ConversionRequest describes one document conversion. It is immutable once
// submitted; the caller retains ownership of OutputDir, where the result file
// is placed on success.
type ConversionRequest struct {
	OperationID      string // unique; generated when empty
	OriginalFilename string // preserved verbatim apart from filesystem sanitization
	SourceBytes      []byte
	SourceFormat     string // lowercase format token, e.g. "docx"
	TargetFormat     string // lowercase format token, e.g. "pdf"
	OutputDir        string // caller-owned destination for the result file
}

// Validate checks that required fields are present.
// OperationID is not required; Convert generates one when absent.
func (r ConversionRequest) Validate() error {
	if r.OriginalFilename == "" {
		return ErrEmptyFilename
	}
	if len(r.SourceBytes) == 0 {
		return ErrEmptySource
	}
	if strings.TrimSpace(r.SourceFormat) == "" || strings.TrimSpace(r.TargetFormat) == "" {
		return ErrEmptyFormat
	}
	if r.OutputDir == "" {
		return ErrEmptyOutputDir
	}
	return nil
}

// ExecutionAttempt records one engine invocation. One attempt exists per
// engine tried, in fallback order.
type ExecutionAttempt struct {
	Engine     string
	StartTime  time.Time
	EndTime    time.Time
	ExitCode   int     // -1 when the process never ran or was killed
	Outcome    Outcome
	Diagnostic string // truncated combined stdout/stderr
	OutputPath string // set only on success, points inside the workspace
}

// Duration returns the wall-clock time of the attempt.
func (a ExecutionAttempt) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// ConversionResult is the terminal outcome of a request. Attempts carry the
// per-engine history for diagnostics even when Success is false.
type ConversionResult struct {
	Success       bool
	OutputPath    string // valid only when Success is true
	Attempts      []ExecutionAttempt
	TotalDuration time.Duration
}

// Default service limits.
const (
	DefaultMaxConcurrent = 4
	DefaultMaxQueueSize  = 16
	DefaultOuterTimeout  = 2 * time.Minute
)

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	maxConcurrent int
	maxQueueSize  int
	outerTimeout  time.Duration
	tempRoot      string
	log           logr.Logger
}

// WithMaxConcurrent bounds the number of in-flight conversions.
// Panics if n <= 0 (programmer error, similar to time.NewTicker).
func WithMaxConcurrent(n int) Option {
	if n <= 0 {
		panic("docconv: WithMaxConcurrent value must be positive")
	}
	return func(s *Service) {
		s.cfg.maxConcurrent = n
	}
}

// WithMaxQueueSize bounds the admission wait queue. Zero disables queueing:
// requests beyond MaxConcurrent fail immediately with ErrCapacityExceeded.
// Panics if n < 0.
func WithMaxQueueSize(n int) Option {
	if n < 0 {
		panic("docconv: WithMaxQueueSize value must not be negative")
	}
	return func(s *Service) {
		s.cfg.maxQueueSize = n
	}
}

// WithOuterTimeout bounds the total wall-clock time of one fallback chain.
// Panics if d <= 0.
func WithOuterTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("docconv: WithOuterTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.outerTimeout = d
	}
}

// WithTempRoot sets the directory under which all workspaces are created.
// Panics if path is empty.
func WithTempRoot(path string) Option {
	if path == "" {
		panic("docconv: WithTempRoot path must not be empty")
	}
	return func(s *Service) {
		s.cfg.tempRoot = path
	}
}

// WithLogger sets the diagnostics logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(s *Service) {
		s.cfg.log = log
	}
}
