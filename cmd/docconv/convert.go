package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	docconv "github.com/alnah/go-docconv"
	"github.com/alnah/go-docconv/internal/config"
)

// timePrecision rounds durations in user-facing output.
const timePrecision = time.Millisecond

// Sentinel errors for the convert command.
var (
	ErrNoInput        = errors.New("no input files provided")
	ErrNoTargetFormat = errors.New("target format is required (--to)")
	ErrNoSourceFormat = errors.New("cannot infer source format (file has no extension)")
	ErrReadInput      = errors.New("failed to read input file")
)

// runConvertCmd executes the convert command and returns an exit code.
func runConvertCmd(ctx context.Context, args []string, deps *Dependencies) int {
	flags, inputs, err := parseConvertFlags(args)
	if err != nil {
		return ExitUsage
	}

	if err := convertFiles(ctx, flags, inputs, deps); err != nil {
		fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// convertFiles runs every input through one shared service. Files are
// submitted in parallel; the service's admission gate is what actually
// bounds engine concurrency.
func convertFiles(ctx context.Context, flags *convertFlags, inputs []string, deps *Dependencies) error {
	if len(inputs) == 0 {
		return ErrNoInput
	}
	if flags.to == "" {
		return ErrNoTargetFormat
	}

	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}

	svc, err := buildService(cfg, flags, deps)
	if err != nil {
		return err
	}

	start := deps.Now()

	var mu sync.Mutex // serializes result lines
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(submitWorkers(cfg, flags))

	for _, input := range inputs {
		input := input
		g.Go(func() error {
			result, err := convertOne(gctx, svc, flags, input)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Fprintf(deps.Stderr, "  %s: %v\n", input, err)
				return fmt.Errorf("%s: %w", input, err)
			}
			if !flags.quiet {
				fmt.Fprintf(deps.Stdout, "  %s -> %s (%d attempt(s), %s)\n",
					input, result.OutputPath, len(result.Attempts),
					result.TotalDuration.Round(timePrecision))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if !flags.quiet {
		fmt.Fprintf(deps.Stdout, "Converted %d file(s) in %s\n",
			len(inputs), deps.Now().Sub(start).Round(timePrecision))
	}
	return nil
}

// convertOne reads a single input file and submits it as one request.
func convertOne(ctx context.Context, svc *docconv.Service, flags *convertFlags, input string) (docconv.ConversionResult, error) {
	var result docconv.ConversionResult

	sourceFormat := strings.TrimPrefix(strings.ToLower(filepath.Ext(input)), ".")
	if sourceFormat == "" {
		return result, fmt.Errorf("%w: %s", ErrNoSourceFormat, input)
	}

	data, err := os.ReadFile(input) // #nosec G304 -- input path is user-provided
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	return svc.Convert(ctx, docconv.ConversionRequest{
		OriginalFilename: filepath.Base(input),
		SourceBytes:      data,
		SourceFormat:     sourceFormat,
		TargetFormat:     flags.to,
		OutputDir:        flags.output,
	})
}

// loadConfig returns the operator registry, or the built-in one when no
// path is given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

// buildService maps config plus flag overrides to a docconv.Service.
func buildService(cfg *config.Config, flags *convertFlags, deps *Dependencies) (*docconv.Service, error) {
	routes, err := buildRoutes(cfg)
	if err != nil {
		return nil, err
	}

	opts := []docconv.Option{
		docconv.WithLogger(newLogger(flags.verbose, deps.Stderr)),
	}

	maxConcurrent := cfg.MaxConcurrent
	if flags.maxConcurrent > 0 {
		maxConcurrent = flags.maxConcurrent
	}
	opts = append(opts, docconv.WithMaxConcurrent(maxConcurrent))

	queueSize := cfg.MaxQueueSize
	if flags.queueSize >= 0 {
		queueSize = flags.queueSize
	}
	opts = append(opts, docconv.WithMaxQueueSize(queueSize))

	if flags.timeout != "" {
		d, err := config.ParseTimeout(flags.timeout)
		if err != nil {
			return nil, err
		}
		opts = append(opts, docconv.WithOuterTimeout(d))
	} else if d := cfg.OuterTimeoutDuration(); d > 0 {
		opts = append(opts, docconv.WithOuterTimeout(d))
	}

	tempRoot := cfg.TempRoot
	if flags.tempRoot != "" {
		tempRoot = flags.tempRoot
	}
	if tempRoot != "" {
		opts = append(opts, docconv.WithTempRoot(tempRoot))
	}

	return docconv.New(routes, opts...)
}

// buildRoutes flattens the engine registry into the library's route table.
func buildRoutes(cfg *config.Config) ([]docconv.Route, error) {
	var routes []docconv.Route
	for _, engine := range cfg.Engines {
		timeout, err := config.ParseTimeout(engine.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%s: timeout: %w", engine.Name, err)
		}
		descriptor := docconv.EngineDescriptor{
			Name:     engine.Name,
			Priority: engine.Priority,
			Command:  engine.Command,
			Args:     engine.Args,
			Timeout:  timeout,
		}
		for _, route := range engine.Routes {
			routes = append(routes, docconv.Route{
				From:   route.From,
				To:     route.To,
				Engine: descriptor,
			})
		}
	}
	return routes, nil
}

// submitWorkers picks how many files are read and submitted at once.
// Submission beyond MaxConcurrent+MaxQueueSize would only collect capacity
// rejections, so it is capped at the gate's total capacity.
func submitWorkers(cfg *config.Config, flags *convertFlags) int {
	if flags.workers > 0 {
		return flags.workers
	}
	n := cfg.MaxConcurrent
	if flags.maxConcurrent > 0 {
		n = flags.maxConcurrent
	}
	if n < 1 {
		n = 1
	}
	return n
}
