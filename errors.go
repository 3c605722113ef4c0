package docconv

import "errors"

// Sentinel errors for library operations.
var (
	// Fast-fail errors, raised before any engine process is spawned.
	ErrCapacityExceeded      = errors.New("conversion capacity exceeded")
	ErrUnsupportedConversion = errors.New("unsupported conversion")

	// Terminal conversion failures, returned with the full attempt list.
	ErrAllEnginesExhausted  = errors.New("all conversion engines failed")
	ErrOuterTimeoutExceeded = errors.New("conversion deadline exceeded")

	// Infrastructure faults, independent of which engine is chosen.
	ErrWorkspaceIO = errors.New("workspace I/O failure")
	ErrPathEscape  = errors.New("path escapes temp root")

	// Request validation errors.
	ErrEmptyOperationID = errors.New("operation ID cannot be empty")
	ErrEmptyFilename    = errors.New("original filename cannot be empty")
	ErrEmptySource      = errors.New("source bytes cannot be empty")
	ErrEmptyFormat      = errors.New("source and target formats are required")
	ErrEmptyOutputDir   = errors.New("output directory is required")

	// Engine descriptor validation errors.
	ErrEngineName    = errors.New("engine name cannot be empty")
	ErrEngineCommand = errors.New("engine command cannot be empty")
	ErrEngineTimeout = errors.New("engine timeout must be positive")
	ErrEngineArgs    = errors.New("engine args must reference the {input} placeholder")

	// Route validation errors.
	ErrEmptyRouteFormat = errors.New("route formats cannot be empty")
	ErrNoRoutes         = errors.New("at least one route is required")
)
