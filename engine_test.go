package docconv

import (
	"errors"
	"testing"
	"time"
)

func TestEngineDescriptor_Validate(t *testing.T) {
	t.Parallel()

	valid := EngineDescriptor{
		Name:    "soffice",
		Command: "soffice",
		Args:    []string{"--convert-to", "{format}", "{input}"},
		Timeout: time.Minute,
	}

	tests := []struct {
		name    string
		mutate  func(*EngineDescriptor)
		wantErr error
	}{
		{"valid", func(e *EngineDescriptor) {}, nil},
		{"empty name", func(e *EngineDescriptor) { e.Name = "  " }, ErrEngineName},
		{"empty command", func(e *EngineDescriptor) { e.Command = "" }, ErrEngineCommand},
		{"zero timeout", func(e *EngineDescriptor) { e.Timeout = 0 }, ErrEngineTimeout},
		{"negative timeout", func(e *EngineDescriptor) { e.Timeout = -time.Second }, ErrEngineTimeout},
		{"missing input placeholder", func(e *EngineDescriptor) { e.Args = []string{"-o", "{outdir}"} }, ErrEngineArgs},
		{"no args at all", func(e *EngineDescriptor) { e.Args = nil }, ErrEngineArgs},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := valid
			engine.Args = append([]string(nil), valid.Args...)
			tt.mutate(&engine)

			err := engine.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEngineDescriptor_BuildArgs(t *testing.T) {
	t.Parallel()

	engine := EngineDescriptor{
		Name:    "soffice",
		Command: "soffice",
		Args:    []string{"--headless", "--convert-to", "{format}", "--outdir", "{outdir}", "{input}"},
		Timeout: time.Minute,
	}

	got := engine.buildArgs("/ws/input/doc.docx", "/ws/output", "pdf")
	want := []string{"--headless", "--convert-to", "pdf", "--outdir", "/ws/output", "/ws/input/doc.docx"}

	if len(got) != len(want) {
		t.Fatalf("buildArgs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("buildArgs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEngineDescriptor_BuildArgsRepeatedPlaceholders(t *testing.T) {
	t.Parallel()

	engine := EngineDescriptor{
		Name:    "pandoc",
		Command: "pandoc",
		Args:    []string{"{input}", "-t", "{format}", "-o", "{outdir}/output.{format}"},
		Timeout: time.Minute,
	}

	got := engine.buildArgs("/ws/in/a.md", "/ws/out", "html")
	if got[4] != "/ws/out/output.html" {
		t.Errorf("composite arg = %q, want %q", got[4], "/ws/out/output.html")
	}
	if got[2] != "html" {
		t.Errorf("format arg = %q, want %q", got[2], "html")
	}
}

func TestEngineDescriptor_BuildArgsDoesNotMutateTemplate(t *testing.T) {
	t.Parallel()

	engine := EngineDescriptor{
		Name:    "e",
		Command: "e",
		Args:    []string{"{input}"},
		Timeout: time.Minute,
	}

	_ = engine.buildArgs("/a", "/b", "pdf")
	if engine.Args[0] != "{input}" {
		t.Errorf("template mutated: Args[0] = %q", engine.Args[0])
	}
}
