// Package script runs Tcl bench scripts on an embedded feather interpreter.
//
// A run loads every *.tcl file of a library directory in lexical order and
// then evaluates the bench script, which is either the embedded default or
// a user supplied file. Scripts can call emit to log through the harness
// logger and read the resolved library directory from $script_path.
package script

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/feather-lang/feather"
	"github.com/weiihann/bencher/workload"
)

const (
	// EnvPath is set to the resolved library directory before a run.
	EnvPath = "BENCHER_SCRIPT_PATH"

	// DefaultLibDir is the library directory used when none is given.
	DefaultLibDir = "scripts/lib"

	embeddedName = "bench.tcl"
)

//go:embed bench.tcl
var benchScript string

// Options selects the library directory and the bench script.
type Options struct {
	LibDir string `json:"lib_dir"`
	File   string `json:"file,omitempty"`
}

type source struct {
	name string
	text string
}

// Program is a loaded library plus bench script, ready to evaluate.
type Program struct {
	// Path is the absolute, symlink-free library directory.
	Path string

	libs  []source
	bench source
}

// Load resolves the library directory, exports it through EnvPath and reads
// every source file. No script is evaluated.
func Load(opts Options) (*Program, error) {
	dir := opts.LibDir
	if dir == "" {
		dir = DefaultLibDir
	}

	path, err := resolveDir(dir)
	if err != nil {
		return nil, err
	}

	if err := os.Setenv(EnvPath, path); err != nil {
		return nil, fmt.Errorf("set %s: %w", EnvPath, err)
	}

	names, err := filepath.Glob(filepath.Join(path, "*.tcl"))
	if err != nil {
		return nil, fmt.Errorf("list script library: %w", err)
	}

	prog := &Program{Path: path}

	for _, name := range names {
		src, err := readSource(name)
		if err != nil {
			return nil, err
		}

		prog.libs = append(prog.libs, src)
	}

	if opts.File == "" {
		prog.bench = source{name: embeddedName, text: benchScript}

		return prog, nil
	}

	prog.bench, err = readSource(opts.File)
	if err != nil {
		return nil, err
	}

	return prog, nil
}

// Run evaluates the library files and then the bench script on a fresh
// interpreter. It returns the bench script's result.
func (p *Program) Run(ctx context.Context, logger *slog.Logger) (string, error) {
	interp := feather.New()
	defer interp.Close()

	interp.SetVar("script_path", p.Path)
	interp.Register("emit", func(msg string, values ...string) {
		logger.InfoContext(ctx, msg, slog.Any("values", values))
	})

	for _, src := range p.libs {
		if _, err := eval(ctx, interp, src); err != nil {
			return "", err
		}
	}

	return eval(ctx, interp, p.bench)
}

// Prepare loads the program outside the timed window and returns the body
// that evaluates it.
func Prepare(logger *slog.Logger, opts Options) (workload.Body, error) {
	prog, err := Load(opts)
	if err != nil {
		return nil, err
	}

	logger.Debug("script library loaded",
		slog.String("path", prog.Path),
		slog.Int("files", len(prog.libs)),
		slog.String("bench", prog.bench.name),
	)

	return func(ctx context.Context) error {
		_, err := prog.Run(ctx, logger)

		return err
	}, nil
}

// Run loads and evaluates the program described by opts.
func Run(ctx context.Context, logger *slog.Logger, opts Options) error {
	body, err := Prepare(logger, opts)
	if err != nil {
		return err
	}

	return body(ctx)
}

func eval(ctx context.Context, interp *feather.Interp, src source) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch pr := interp.Parse(src.text); pr.Status {
	case feather.ParseOK:
	case feather.ParseIncomplete:
		return "", fmt.Errorf("%s: incomplete script", src.name)
	default:
		return "", fmt.Errorf("%s: parse error: %s", src.name, pr.Message)
	}

	res, err := interp.Eval(src.text)
	if err != nil {
		return "", fmt.Errorf("%s: %w", src.name, err)
	}

	return res.String(), nil
}

func resolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve script library %s: %w", dir, err)
	}

	path, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve script library %s: %w", dir, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat script library: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("script library %s is not a directory", path)
	}

	return path, nil
}

func readSource(name string) (source, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return source{}, fmt.Errorf("read script: %w", err)
	}

	return source{name: filepath.Base(name), text: string(text)}, nil
}
