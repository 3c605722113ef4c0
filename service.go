package docconv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/alnah/go-docconv/internal/fileutil"
)

// Service orchestrates the conversion pipeline: admission, workspace,
// routing, fallback execution, and guaranteed cleanup. One Service instance
// is constructed at startup and shared by all request handlers; it holds the
// only cross-request state (the admission gate).
type Service struct {
	cfg         serviceConfig
	admission   *AdmissionController
	workspaces  *WorkspaceManager
	router      *ConversionRouter
	coordinator *FallbackCoordinator
}

// New creates a Service routing over the given engine registry.
// Use options to customize limits, timeouts, and logging.
func New(routes []Route, opts ...Option) (*Service, error) {
	s := &Service{
		cfg: serviceConfig{
			maxConcurrent: DefaultMaxConcurrent,
			maxQueueSize:  DefaultMaxQueueSize,
			outerTimeout:  DefaultOuterTimeout,
			tempRoot:      filepath.Join(os.TempDir(), "docconv"),
			log:           logr.Discard(),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	router, err := NewConversionRouter(routes)
	if err != nil {
		return nil, err
	}
	workspaces, err := NewWorkspaceManager(s.cfg.tempRoot)
	if err != nil {
		return nil, err
	}

	s.router = router
	s.workspaces = workspaces
	s.admission = NewAdmissionController(s.cfg.maxConcurrent, s.cfg.maxQueueSize)
	s.coordinator = newFallbackCoordinator(newProcessExecutor(s.cfg.log), s.cfg.log)
	return s, nil
}

// Router exposes the service's route table (read-only lookups).
func (s *Service) Router() *ConversionRouter {
	return s.router
}

// Convert runs one request through the full pipeline and returns the result.
// On success the output file has been copied to req.OutputDir and
// result.OutputPath points at it; the workspace copy is already gone.
//
// Failures keep a small, stable taxonomy regardless of how many engines were
// attempted: ErrCapacityExceeded, ErrUnsupportedConversion,
// ErrAllEnginesExhausted, ErrOuterTimeoutExceeded, ErrWorkspaceIO, or the
// caller's context error. The attempt list in the result carries the
// per-engine history for server-side diagnostics; raw engine output and
// workspace paths never leave it.
func (s *Service) Convert(ctx context.Context, req ConversionRequest) (ConversionResult, error) {
	var result ConversionResult

	if err := req.Validate(); err != nil {
		return result, err
	}
	if req.OperationID == "" {
		req.OperationID = uuid.NewString()
	}

	release, err := s.admission.Acquire(ctx)
	if err != nil {
		return result, err
	}

	// Single cleanup block for the whole request lifecycle: the slot is
	// released and the workspace destroyed exactly once on every exit path,
	// including panics in the stages below. A failed delete is logged, never
	// propagated, so it cannot leak the slot.
	var ws *Workspace
	defer func() {
		if ws != nil {
			if derr := s.workspaces.Destroy(ws); derr != nil {
				s.cfg.log.Error(derr, "workspace cleanup failed", "operation", req.OperationID)
			}
		}
		release()
	}()

	ws, err = s.workspaces.Create(req.OperationID, req.OriginalFilename)
	if err != nil {
		return result, err
	}
	if err := ws.WriteInput(req.SourceBytes); err != nil {
		return result, err
	}

	candidates, err := s.router.Resolve(req.SourceFormat, req.TargetFormat)
	if err != nil {
		return result, err
	}

	result, err = s.coordinator.Run(ctx, req, ws, candidates, s.cfg.outerTimeout)
	if err != nil {
		return result, err
	}

	// Hand the result to the caller before the deferred destroy removes the
	// workspace copy.
	finalPath := filepath.Join(req.OutputDir, outputFilename(req))
	if err := fileutil.CopyFile(result.OutputPath, finalPath); err != nil {
		result.Success = false
		result.OutputPath = ""
		return result, fmt.Errorf("%w: delivering output: %v", ErrWorkspaceIO, err)
	}
	result.OutputPath = finalPath

	s.cfg.log.Info("conversion finished",
		"operation", req.OperationID,
		"source", req.SourceFormat,
		"target", req.TargetFormat,
		"attempts", len(result.Attempts),
		"duration", result.TotalDuration)

	return result, nil
}

// outputFilename derives the delivered filename from the original name and
// the target format: "Report (FINAL) v2.doc" converted to pdf becomes
// "Report (FINAL) v2.pdf".
func outputFilename(req ConversionRequest) string {
	base := SanitizeFilename(req.OriginalFilename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = fallbackFilename
	}
	return base + "." + normalizeFormat(req.TargetFormat)
}
