package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/alnah/go-docconv/internal/config"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string         `json:"status"` // "ready", "warnings", "errors"
	Engines  []engineStatus `json:"engines"`
	Env      envInfo        `json:"environment"`
	System   systemInfo     `json:"system"`
	Warnings []string       `json:"warnings,omitempty"`
	Errors   []string       `json:"errors,omitempty"`
}

// engineStatus holds the detection result for one configured engine.
type engineStatus struct {
	Name    string `json:"name"`
	Command string `json:"command"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Routes  int    `json:"routes"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, deps *Dependencies) int {
	flags, err := parseDoctorFlags(args)
	if err != nil {
		return ExitUsage
	}

	cfg, err := loadConfig(flags.config)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	result := runDoctor(cfg, deps.LookPath)

	if flags.json {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(deps.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks against the engine registry.
func runDoctor(cfg *config.Config, lookPath func(string) (string, error)) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	checkEngines(cfg, lookPath, result)
	checkSystem(result)

	// A registry where nothing resolves cannot convert anything; a partial
	// registry still works for the routes its present engines serve.
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkEngines resolves every configured engine binary.
func checkEngines(cfg *config.Config, lookPath func(string) (string, error), result *doctorResult) {
	found := 0
	for _, engine := range cfg.Engines {
		status := engineStatus{
			Name:    engine.Name,
			Command: engine.Command,
			Routes:  len(engine.Routes),
		}

		path, err := lookPath(engine.Command)
		if err == nil {
			status.Found = true
			status.Path = path
			found++
		} else {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("engine %q: %s not found on PATH; its routes will fall through", engine.Name, engine.Command))
		}

		result.Engines = append(result.Engines, status)
	}

	if found == 0 {
		result.Errors = append(result.Errors,
			"no configured engine binary was found; install one or point the config at existing executables")
	}
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "docconv-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "docconv doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Engines")
	for _, engine := range r.Engines {
		if engine.Found {
			fmt.Fprintf(w, "  [OK] %s: %s (%d route(s))\n", engine.Name, engine.Path, engine.Routes)
		} else {
			fmt.Fprintf(w, "  [MISSING] %s: %s not on PATH\n", engine.Name, engine.Command)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
