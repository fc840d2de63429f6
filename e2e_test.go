package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"minicpp/pkg/asm"
	"minicpp/pkg/interp"
	"minicpp/pkg/vm"
)

// Each _programs/<name>.cpp has a <name>.out holding the exact output and,
// when the run fails, a <name>.err holding the exact error text.
type golden struct {
	name    string
	src     string
	wantOut string
	wantErr string
}

func loadGoldens(t *testing.T) []golden {
	t.Helper()
	paths, err := filepath.Glob("_programs/*.cpp")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no programs found in _programs")
	}

	var gs []golden
	for _, path := range paths {
		base := strings.TrimSuffix(path, ".cpp")
		src, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read source: %v", err)
		}
		out, err := os.ReadFile(base + ".out")
		if err != nil {
			t.Fatalf("Failed to read expected output: %v", err)
		}
		g := golden{name: filepath.Base(base), src: string(src), wantOut: string(out)}
		if msg, err := os.ReadFile(base + ".err"); err == nil {
			g.wantErr = string(msg)
		} else if !errors.Is(err, os.ErrNotExist) {
			t.Fatal(err)
		}
		gs = append(gs, g)
	}
	return gs
}

func checkResult(t *testing.T, g golden, out string, err error) {
	t.Helper()
	if out != g.wantOut {
		t.Errorf("output = %q, want %q", out, g.wantOut)
	}
	switch {
	case g.wantErr == "" && err != nil:
		t.Errorf("unexpected error: %v", err)
	case g.wantErr != "" && err == nil:
		t.Errorf("expected error %q", g.wantErr)
	case err != nil && err.Error() != g.wantErr:
		t.Errorf("error = %q, want %q", err.Error(), g.wantErr)
	}
}

func TestProgramsInterpreted(t *testing.T) {
	for _, g := range loadGoldens(t) {
		t.Run(g.name, func(t *testing.T) {
			var sb strings.Builder
			_, err := interp.Run(g.src, &interp.Options{
				Output:   func(s string) { sb.WriteString(s) },
				MaxSteps: 100000,
			})
			checkResult(t, g, sb.String(), err)
		})
	}
}

func TestProgramsOnVM(t *testing.T) {
	for _, g := range loadGoldens(t) {
		t.Run(g.name, func(t *testing.T) {
			listing, prog, err := asm.Compile(g.src)
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}

			var sb strings.Builder
			m := vm.New(prog)
			m.Output = &sb
			m.MaxSteps = 1000000
			err = m.Run()
			if !m.Halted {
				t.Errorf("VM did not halt\nListing:\n%s", listing)
			}
			checkResult(t, g, sb.String(), err)
		})
	}
}
