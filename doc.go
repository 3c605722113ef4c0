// Package docconv converts documents between formats by driving external
// conversion engines (headless office suites and similar tools) as isolated,
// time-bounded subprocesses.
//
// # Quick Start
//
// Create a service from an engine registry, then submit requests:
//
//	svc, err := docconv.New(routes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := svc.Convert(ctx, docconv.ConversionRequest{
//	    OriginalFilename: "Report (FINAL) v2.doc",
//	    SourceBytes:      data,
//	    SourceFormat:     "doc",
//	    TargetFormat:     "pdf",
//	    OutputDir:        "/var/out",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.OutputPath)
//
// # Execution Pipeline
//
// Each request flows through these stages:
//
//  1. Admission: a bounded-concurrency gate with a FIFO wait queue. When the
//     queue is full the request fails fast with ErrCapacityExceeded.
//  2. Workspace: an isolated input/output directory pair is created under the
//     temp root; the original filename is preserved, sanitized only for
//     filesystem safety, because some engines embed it in output metadata.
//  3. Routing: the (source, target) format pair resolves to an ordered list
//     of candidate engines, or ErrUnsupportedConversion.
//  4. Fallback: candidates run in order, one subprocess per attempt with a
//     hard per-attempt timeout and a bounded outer deadline, until one
//     succeeds or the chain is exhausted.
//  5. Cleanup: the admission slot and the workspace are each released exactly
//     once on every exit path; the output file is copied to the caller-owned
//     directory before the workspace is destroyed.
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc, err := docconv.New(routes,
//	    docconv.WithMaxConcurrent(4),
//	    docconv.WithMaxQueueSize(16),
//	    docconv.WithOuterTimeout(2*time.Minute),
//	    docconv.WithTempRoot("/var/tmp/docconv"),
//	    docconv.WithLogger(logger),
//	)
//
// Routes bind engines to format pairs. Engine argument templates use the
// placeholders {input}, {outdir}, and {format}; arguments are passed directly
// as a vector to the OS, never through a shell:
//
//	soffice := docconv.EngineDescriptor{
//	    Name:    "libreoffice",
//	    Command: "soffice",
//	    Args:    []string{"--headless", "--convert-to", "{format}", "--outdir", "{outdir}", "{input}"},
//	    Timeout: 60 * time.Second,
//	}
//	routes := []docconv.Route{{From: "docx", To: "pdf", Engine: soffice}}
//
// # Engine Requirements
//
// Engines are external programs resolved from the configured command path.
// Failures to start map to IOError, non-zero exits (or exits producing no
// output file) to Crashed, and overruns to Timeout with the whole process
// tree terminated. Individual engine failures never surface to callers; only
// the terminal taxonomy (capacity, unsupported, exhausted, deadline,
// workspace I/O) does, together with the full attempt list for diagnostics.
package docconv
