// Package config loads and validates the engine registry and service limits
// consumed by the conversion service and the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/go-docconv/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrNoEngines      = errors.New("config declares no engines")
	ErrDuplicateName  = errors.New("duplicate engine name")
	ErrInvalidLimit   = errors.New("invalid limit")
	ErrInvalidEngine  = errors.New("invalid engine")
	ErrInvalidRoute   = errors.New("invalid route")
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// Limits keep operator mistakes from turning into resource exhaustion.
const (
	MaxConcurrentCeiling = 256  // active conversions
	MaxQueueCeiling      = 4096 // queued requests
	MaxEngines           = 64   // registry size
	MaxArgLength         = 4096 // single argument template entry
)

// formatPattern matches format tokens: lowercase alphanumerics, e.g. "docx".
var formatPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// Config holds all configuration for the conversion service.
type Config struct {
	MaxConcurrent int            `yaml:"maxConcurrent"` // in-flight conversion limit
	MaxQueueSize  int            `yaml:"maxQueueSize"`  // admission wait queue ceiling
	TempRoot      string         `yaml:"tempRoot"`      // workspace root (empty = system temp)
	OuterTimeout  string         `yaml:"outerTimeout"`  // whole-chain budget, e.g. "2m"
	Engines       []EngineConfig `yaml:"engines"`
}

// EngineConfig declares one external conversion engine and the format pairs
// it serves.
type EngineConfig struct {
	Name     string        `yaml:"name"`
	Priority int           `yaml:"priority"` // higher runs earlier in the fallback chain
	Command  string        `yaml:"command"`  // executable path or PATH-resolved name
	Args     []string      `yaml:"args"`     // template with {input}, {outdir}, {format}
	Timeout  string        `yaml:"timeout"`  // per-attempt deadline, e.g. "60s"
	Routes   []RouteConfig `yaml:"routes"`
}

// RouteConfig is one supported (source, target) format pair.
type RouteConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// DefaultConfig returns a registry with the stock local engines: LibreOffice
// as the high-fidelity tier for office formats and pandoc as the markup
// fallback. Operators override ordering by adjusting priorities.
func DefaultConfig() *Config {
	officeRoutes := []RouteConfig{
		{From: "doc", To: "pdf"},
		{From: "docx", To: "pdf"},
		{From: "odt", To: "pdf"},
		{From: "ppt", To: "pdf"},
		{From: "pptx", To: "pdf"},
		{From: "xls", To: "pdf"},
		{From: "xlsx", To: "pdf"},
		{From: "rtf", To: "pdf"},
		{From: "txt", To: "pdf"},
		{From: "html", To: "pdf"},
		{From: "pdf", To: "docx"},
		{From: "docx", To: "odt"},
		{From: "odt", To: "docx"},
	}
	pandocRoutes := []RouteConfig{
		{From: "md", To: "pdf"},
		{From: "md", To: "docx"},
		{From: "html", To: "pdf"},
		{From: "txt", To: "pdf"},
		{From: "docx", To: "md"},
	}

	return &Config{
		MaxConcurrent: 4,
		MaxQueueSize:  16,
		OuterTimeout:  "2m",
		Engines: []EngineConfig{
			{
				Name:     "libreoffice",
				Priority: 100,
				Command:  "soffice",
				Args:     []string{"--headless", "--convert-to", "{format}", "--outdir", "{outdir}", "{input}"},
				Timeout:  "90s",
				Routes:   officeRoutes,
			},
			{
				Name:     "pandoc",
				Priority: 50,
				Command:  "pandoc",
				Args:     []string{"{input}", "-t", "{format}", "-o", "{outdir}/output.{format}"},
				Timeout:  "60s",
				Routes:   pandocRoutes,
			},
		},
	}
}

// Load reads and validates a config file. Returns ErrConfigNotFound when the
// path does not exist (no silent fallback to defaults).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is operator-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks limits, engine declarations, and routes. Called
// automatically by Load, but available for consumers who construct Config
// manually.
func (c *Config) Validate() error {
	if c.MaxConcurrent < 1 || c.MaxConcurrent > MaxConcurrentCeiling {
		return fmt.Errorf("%w: maxConcurrent must be 1-%d, got %d", ErrInvalidLimit, MaxConcurrentCeiling, c.MaxConcurrent)
	}
	if c.MaxQueueSize < 0 || c.MaxQueueSize > MaxQueueCeiling {
		return fmt.Errorf("%w: maxQueueSize must be 0-%d, got %d", ErrInvalidLimit, MaxQueueCeiling, c.MaxQueueSize)
	}
	if c.OuterTimeout != "" {
		if _, err := ParseTimeout(c.OuterTimeout); err != nil {
			return fmt.Errorf("outerTimeout: %w", err)
		}
	}

	if len(c.Engines) == 0 {
		return ErrNoEngines
	}
	if len(c.Engines) > MaxEngines {
		return fmt.Errorf("%w: %d engines (max %d)", ErrInvalidLimit, len(c.Engines), MaxEngines)
	}

	seen := make(map[string]bool, len(c.Engines))
	for i, engine := range c.Engines {
		if err := validateEngine(i, engine); err != nil {
			return err
		}
		if seen[engine.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, engine.Name)
		}
		seen[engine.Name] = true
	}
	return nil
}

// OuterTimeoutDuration returns the parsed whole-chain budget, or zero when
// unset (callers fall back to their own default).
func (c *Config) OuterTimeoutDuration() time.Duration {
	if c.OuterTimeout == "" {
		return 0
	}
	d, err := ParseTimeout(c.OuterTimeout)
	if err != nil {
		return 0
	}
	return d
}

// ParseTimeout parses a duration string and requires it to be positive.
func ParseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidTimeout, s)
	}
	return d, nil
}

func validateEngine(i int, engine EngineConfig) error {
	if strings.TrimSpace(engine.Name) == "" {
		return fmt.Errorf("%w: engines[%d]: name is required", ErrInvalidEngine, i)
	}
	if strings.TrimSpace(engine.Command) == "" {
		return fmt.Errorf("%w: %s: command is required", ErrInvalidEngine, engine.Name)
	}
	if _, err := ParseTimeout(engine.Timeout); err != nil {
		return fmt.Errorf("%s: timeout: %w", engine.Name, err)
	}

	hasInput := false
	for _, arg := range engine.Args {
		if len(arg) > MaxArgLength {
			return fmt.Errorf("%w: %s: argument exceeds %d bytes", ErrInvalidEngine, engine.Name, MaxArgLength)
		}
		if strings.Contains(arg, "{input}") {
			hasInput = true
		}
	}
	if !hasInput {
		return fmt.Errorf("%w: %s: args must reference {input}", ErrInvalidEngine, engine.Name)
	}

	if len(engine.Routes) == 0 {
		return fmt.Errorf("%w: %s: at least one route is required", ErrInvalidEngine, engine.Name)
	}
	for _, route := range engine.Routes {
		if !formatPattern.MatchString(route.From) || !formatPattern.MatchString(route.To) {
			return fmt.Errorf("%w: %s: %q -> %q (formats are lowercase alphanumeric tokens)",
				ErrInvalidRoute, engine.Name, route.From, route.To)
		}
	}
	return nil
}
