package docconv

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

// FallbackCoordinator walks an ordered candidate list, invoking the executor
// for each engine until one succeeds or the list is exhausted. Attempts run
// sequentially on the caller's goroutine; the admission slot is held across
// the entire chain, not per attempt.
type FallbackCoordinator struct {
	exec engineExecutor
	log  logr.Logger
}

func newFallbackCoordinator(exec engineExecutor, log logr.Logger) *FallbackCoordinator {
	return &FallbackCoordinator{exec: exec, log: log}
}

// Run tries candidates in order and returns at the first success. Individual
// engine failures (timeout, crash, start failure) are absorbed: they drive
// the next attempt rather than propagating. Cumulative wall clock is bounded
// by outerTimeout, so worst-case latency stays predictable no matter how
// many fallback tiers are configured; per-attempt timeouts are capped at the
// remaining budget.
//
// On failure the returned result carries every attempt made, and the error
// is one of ErrOuterTimeoutExceeded, ErrAllEnginesExhausted, or the context
// error when the caller cancelled mid-chain.
func (f *FallbackCoordinator) Run(ctx context.Context, req ConversionRequest, ws *Workspace, candidates []EngineDescriptor, outerTimeout time.Duration) (ConversionResult, error) {
	start := time.Now()
	result := ConversionResult{}
	deadlineHit := false

	for _, engine := range candidates {
		if ctx.Err() != nil {
			break
		}

		remaining := outerTimeout - time.Since(start)
		if remaining <= 0 {
			deadlineHit = true
			break
		}
		timeout := engine.Timeout
		if timeout > remaining {
			timeout = remaining
		}

		attempt := f.exec.Execute(ctx, engine, ws, req.TargetFormat, timeout)
		result.Attempts = append(result.Attempts, attempt)

		f.log.V(1).Info("engine attempt finished",
			"operation", req.OperationID,
			"engine", engine.Name,
			"outcome", attempt.Outcome,
			"exitCode", attempt.ExitCode,
			"duration", attempt.Duration())

		if attempt.Outcome == OutcomeSuccess {
			result.Success = true
			result.OutputPath = attempt.OutputPath
			result.TotalDuration = time.Since(start)
			return result, nil
		}
		// Timeout, Crashed, IOError: move to the next candidate. Never
		// retry the same engine on the same input; a deterministic failure
		// would simply fail again.
	}

	result.TotalDuration = time.Since(start)

	switch {
	case ctx.Err() != nil:
		return result, ctx.Err()
	case deadlineHit:
		return result, fmt.Errorf("%w: %d of %d engines tried in %s",
			ErrOuterTimeoutExceeded, len(result.Attempts), len(candidates), outerTimeout)
	default:
		return result, fmt.Errorf("%w: %d engines tried", ErrAllEnginesExhausted, len(result.Attempts))
	}
}
