package script

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestRunBundledLibrary(t *testing.T) {
	t.Setenv(EnvPath, "")

	prog, err := Load(Options{LibDir: "../scripts/lib"})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	start := time.Now()

	got, err := prog.Run(context.Background(), discardLogger())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// sum of i*i for i in [0, 500)
	if got != "41541750" {
		t.Errorf("got %s, want 41541750", got)
	}

	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("bundled script took %s, want well under 5s", elapsed)
	}
}

func TestBundledLibraryProcs(t *testing.T) {
	t.Setenv(EnvPath, "")

	tests := []struct {
		expr string
		want string
	}{
		{"square 12", "144"},
		{"sum_squares 0", "0"},
		{"sum_squares 4", "14"},
		{"fib 0", "0"},
		{"fib 10", "55"},
		{"fib 30", "832040"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			bench := writeFile(t, t.TempDir(), "bench.tcl", tt.expr)

			prog, err := Load(Options{LibDir: "../scripts/lib", File: bench})
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}

			got, err := prog.Run(context.Background(), discardLogger())
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLoadExportsPath(t *testing.T) {
	t.Setenv(EnvPath, "")

	dir := t.TempDir()
	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}

	link := filepath.Join(t.TempDir(), "lib")
	if err := os.Symlink(dir, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	prog, err := Load(Options{LibDir: link})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if prog.Path != want {
		t.Errorf("path = %s, want %s", prog.Path, want)
	}
	if got := os.Getenv(EnvPath); got != want {
		t.Errorf("%s = %s, want %s", EnvPath, got, want)
	}
}

func TestLibraryLoadOrder(t *testing.T) {
	t.Setenv(EnvPath, "")

	dir := t.TempDir()
	writeFile(t, dir, "b.tcl", `set order "$order b"`)
	writeFile(t, dir, "a.tcl", `set order a`)
	writeFile(t, dir, "notes.txt", `this is not tcl {`)
	bench := writeFile(t, t.TempDir(), "bench.tcl", `set order "$order bench"`)

	prog, err := Load(Options{LibDir: dir, File: bench})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	got, err := prog.Run(context.Background(), discardLogger())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got != "a b bench" {
		t.Errorf("got %q, want %q", got, "a b bench")
	}
}

func TestScriptPathVariable(t *testing.T) {
	t.Setenv(EnvPath, "")

	dir := t.TempDir()
	bench := writeFile(t, t.TempDir(), "bench.tcl", `set script_path`)

	prog, err := Load(Options{LibDir: dir, File: bench})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	got, err := prog.Run(context.Background(), discardLogger())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got != prog.Path {
		t.Errorf("script_path = %s, want %s", got, prog.Path)
	}
}

func TestEmitLogs(t *testing.T) {
	t.Setenv(EnvPath, "")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	bench := writeFile(t, t.TempDir(), "bench.tcl", `emit "checkpoint reached" 1 2`)

	if err := Run(context.Background(), logger, Options{LibDir: t.TempDir(), File: bench}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !strings.Contains(buf.String(), "checkpoint reached") {
		t.Errorf("log output missing emitted message:\n%s", buf.String())
	}
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name    string
		lib     string
		bench   string
		wantErr string
	}{
		{"incomplete bench", "", "set x {", "incomplete"},
		{"unknown command", "", "no_such_command 1", "bench.tcl"},
		{"broken library", "set y 1\nmissing_helper $y", "set x 1", "lib.tcl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvPath, "")

			dir := t.TempDir()
			if tt.lib != "" {
				writeFile(t, dir, "lib.tcl", tt.lib)
			}
			bench := writeFile(t, t.TempDir(), "bench.tcl", tt.bench)

			err := Run(context.Background(), discardLogger(), Options{LibDir: dir, File: bench})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFailures(t *testing.T) {
	t.Setenv(EnvPath, "")

	notDir := writeFile(t, t.TempDir(), "file.tcl", "set x 1")

	tests := []struct {
		name string
		opts Options
	}{
		{"missing library", Options{LibDir: filepath.Join(t.TempDir(), "missing")}},
		{"library is a file", Options{LibDir: notDir}},
		{"missing bench file", Options{LibDir: t.TempDir(), File: filepath.Join(t.TempDir(), "none.tcl")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunCanceled(t *testing.T) {
	t.Setenv(EnvPath, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, discardLogger(), Options{LibDir: "../scripts/lib"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
