package main

import (
	"errors"
	"testing"
	"time"

	docconv "github.com/alnah/go-docconv"
	"github.com/alnah/go-docconv/internal/config"
)

func TestBuildRoutes_FlattensRegistry(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		MaxConcurrent: 2,
		Engines: []config.EngineConfig{
			{
				Name:    "libreoffice",
				Command: "soffice",
				Args:    []string{"{input}"},
				Timeout: "90s",
				Routes: []config.RouteConfig{
					{From: "docx", To: "pdf"},
					{From: "odt", To: "pdf"},
				},
			},
			{
				Name:    "pandoc",
				Command: "pandoc",
				Args:    []string{"{input}"},
				Timeout: "60s",
				Routes:  []config.RouteConfig{{From: "md", To: "pdf"}},
			},
		},
	}

	routes, err := buildRoutes(cfg)
	if err != nil {
		t.Fatalf("buildRoutes() error = %v", err)
	}
	if len(routes) != 3 {
		t.Fatalf("buildRoutes() returned %d routes, want 3", len(routes))
	}

	if routes[0].From != "docx" || routes[0].To != "pdf" || routes[0].Engine.Name != "libreoffice" {
		t.Errorf("routes[0] = %s->%s via %s", routes[0].From, routes[0].To, routes[0].Engine.Name)
	}
	if routes[0].Engine.Timeout != 90*time.Second {
		t.Errorf("libreoffice timeout = %v, want 90s", routes[0].Engine.Timeout)
	}
	if routes[2].Engine.Name != "pandoc" || routes[2].Engine.Timeout != time.Minute {
		t.Errorf("routes[2] engine = %s/%v, want pandoc/1m", routes[2].Engine.Name, routes[2].Engine.Timeout)
	}
}

func TestBuildRoutes_BadTimeout(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Engines: []config.EngineConfig{{
			Name:    "e",
			Command: "c",
			Args:    []string{"{input}"},
			Timeout: "soon",
			Routes:  []config.RouteConfig{{From: "md", To: "pdf"}},
		}},
	}

	if _, err := buildRoutes(cfg); !errors.Is(err, config.ErrInvalidTimeout) {
		t.Errorf("buildRoutes() error = %v, want ErrInvalidTimeout", err)
	}
}

func TestBuildRoutes_DefaultRegistryLoadsIntoRouter(t *testing.T) {
	t.Parallel()

	routes, err := buildRoutes(config.DefaultConfig())
	if err != nil {
		t.Fatalf("buildRoutes() error = %v", err)
	}

	router, err := docconv.NewConversionRouter(routes)
	if err != nil {
		t.Fatalf("NewConversionRouter() error = %v", err)
	}

	// docx->pdf is served by both tiers; libreoffice must lead.
	candidates, err := router.Resolve("docx", "pdf")
	if err != nil {
		t.Fatalf("Resolve(docx, pdf) error = %v", err)
	}
	if candidates[0].Name != "libreoffice" {
		t.Errorf("first candidate = %q, want libreoffice", candidates[0].Name)
	}
	if !router.Supports("md", "pdf") {
		t.Error("Supports(md, pdf) = false, want true from the pandoc tier")
	}
}

func TestSubmitWorkers(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{MaxConcurrent: 4}

	tests := []struct {
		name  string
		flags convertFlags
		want  int
	}{
		{"from config", convertFlags{}, 4},
		{"explicit workers win", convertFlags{workers: 2}, 2},
		{"flag max-concurrent overrides config", convertFlags{maxConcurrent: 8}, 8},
		{"floor of one", convertFlags{}, 4},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := submitWorkers(cfg, &tt.flags); got != tt.want {
				t.Errorf("submitWorkers() = %d, want %d", got, tt.want)
			}
		})
	}

	if got := submitWorkers(&config.Config{}, &convertFlags{}); got != 1 {
		t.Errorf("submitWorkers() with empty config = %d, want floor of 1", got)
	}
}

func TestLoadConfig_EmptyPathUsesBuiltIn(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig(\"\") error = %v", err)
	}
	if len(cfg.Engines) == 0 {
		t.Error("built-in registry has no engines")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := loadConfig("/nonexistent/engines.yaml"); !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("loadConfig() error = %v, want ErrConfigNotFound", err)
	}
}
