// Package b2 drives Boost.Build: bootstrapping the engine, generating the
// header tree, building the libraries and staging the results.
package b2

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/goplus/boostpkg/internal/command"
	"github.com/goplus/boostpkg/pkgs/buildsys"
)

// Artifact patterns copied out of the stage folder. Dynamic libraries go
// to bin, everything else to lib.
var (
	LibPatterns = []string{"*.a", "*.so", "*.so.*", "*.dylib*", "*.lib"}
	BinPatterns = []string{"*.dll"}
)

// B2 builds a Boost source tree.
type B2 struct {
	runner command.Runner

	SourceDir  string // Boost root, holding boost/, libs/ and tools/
	buildDir   string
	installDir string

	// Toolset is passed to bootstrap.sh --with-toolset.
	Toolset string
	// Windows selects bootstrap.bat and b2.exe.
	Windows bool

	env    map[string]string
	stdout io.Writer
	stderr io.Writer
}

var _ buildsys.BuildSystem = (*B2)(nil)

// New creates a B2 running commands through runner. Tool output goes to
// the process stdout and stderr.
func New(runner command.Runner) *B2 {
	return &B2{
		runner:  runner,
		Windows: runtime.GOOS == "windows",
		env:     map[string]string{},
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

func (b *B2) Source(dir string) {
	b.SourceDir = dir
}

func (b *B2) InstallDir(dir string) {
	b.installDir = dir
}

// BuildDir sets the folder holding the stage and intermediate files.
func (b *B2) BuildDir(dir string) {
	b.buildDir = dir
}

// Output redirects tool output.
func (b *B2) Output(stdout, stderr io.Writer) {
	b.stdout, b.stderr = stdout, stderr
}

func (b *B2) Env(key, val string) {
	if b.env == nil {
		b.env = map[string]string{}
	}
	b.env[key] = val
}

// OutputDir returns the install dir.
func (b *B2) OutputDir() string {
	return b.installDir
}

// StageDir is where b2 puts the built libraries.
func (b *B2) StageDir() string {
	return filepath.Join(b.buildDir, "stage")
}

func (b *B2) toolsBuildDir() string {
	return filepath.Join(b.SourceDir, "tools", "build")
}

func (b *B2) exe(name string) string {
	if b.Windows {
		return name + ".exe"
	}
	return name
}

// Configure bootstraps the b2 engine and copies it to the Boost root. args
// are appended to the bootstrap command line. When bootstrapping fails its
// log is reported.
func (b *B2) Configure(ctx context.Context, args ...string) error {
	tools := b.toolsBuildDir()
	cmd := &command.Cmd{Dir: tools}
	if b.Windows {
		// Stale engines would be picked up instead of the fresh build.
		for _, dir := range []string{"bin.ntx86", "bin.ntx86_64"} {
			for _, exe := range []string{"b2.exe", "bjam.exe"} {
				removeFile(filepath.Join(tools, "src", "engine", dir, exe))
			}
		}
		cmd.Name = "cmd"
		cmd.Args = append([]string{"/c", "bootstrap.bat"}, args...)
	} else {
		cmd.Name = filepath.Join(tools, "bootstrap.sh")
		if b.Toolset != "" {
			cmd.Args = append(cmd.Args, "--with-toolset="+b.Toolset)
		}
		cmd.Args = append(cmd.Args, args...)
	}

	slog.Info("running bootstrap", "cmd", cmd.String(), "dir", tools)
	if err := b.run(ctx, cmd); err != nil {
		if log, rerr := os.ReadFile(filepath.Join(tools, "bootstrap.log")); rerr == nil {
			slog.Error("bootstrap failed", "log", string(log))
			fmt.Fprintf(b.stderr, "Error running bootstrap. bootstrap.log:\n----------\n%s\n----------\n", log)
		}
		return fmt.Errorf("bootstrap: %w", err)
	}

	engine := b.exe("b2")
	if err := copyFile(filepath.Join(tools, engine), filepath.Join(b.SourceDir, engine)); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	return nil
}

// Headers generates the boost/ header tree in the Boost root.
func (b *B2) Headers(ctx context.Context) error {
	cmd := &command.Cmd{Name: b.engine(), Args: []string{"headers"}, Dir: b.SourceDir}
	slog.Info("running", "cmd", cmd.String())
	if err := b.run(ctx, cmd); err != nil {
		return fmt.Errorf("b2 headers: %w", err)
	}
	return nil
}

// Build runs b2 with the stage folder under the build dir and args.
func (b *B2) Build(ctx context.Context, args ...string) error {
	if b.buildDir == "" {
		return errors.New("b2: build dir is not set")
	}
	cmd := &command.Cmd{
		Name: b.engine(),
		Args: append([]string{"--stagedir=" + b.StageDir()}, args...),
		Dir:  b.SourceDir,
	}
	slog.Info("running", "cmd", cmd.String())
	if err := b.run(ctx, cmd); err != nil {
		return fmt.Errorf("b2: %w", err)
	}
	return nil
}

// Install copies the header tree to include/boost and, if something was
// built, the staged libraries to lib and bin of the install dir.
func (b *B2) Install(ctx context.Context, args ...string) error {
	if b.installDir == "" {
		return errors.New("b2: install dir is not set")
	}
	headers := filepath.Join(b.SourceDir, "boost")
	if err := copyTree(headers, filepath.Join(b.installDir, "include", "boost")); err != nil {
		return fmt.Errorf("install headers: %w", err)
	}
	if b.buildDir == "" {
		return nil
	}
	staged := filepath.Join(b.StageDir(), "lib")
	entries, err := os.ReadDir(staged)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		var dst string
		switch {
		case match(LibPatterns, e.Name()):
			dst = "lib"
		case match(BinPatterns, e.Name()):
			dst = "bin"
		default:
			continue
		}
		if err := copyFile(filepath.Join(staged, e.Name()), filepath.Join(b.installDir, dst, e.Name())); err != nil {
			return fmt.Errorf("install %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Match reports whether the base name of file matches one of patterns.
func Match(patterns []string, file string) bool {
	return match(patterns, filepath.Base(file))
}

func match(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func (b *B2) engine() string {
	return filepath.Join(b.SourceDir, b.exe("b2"))
}

func (b *B2) run(ctx context.Context, cmd *command.Cmd) error {
	if len(b.env) > 0 {
		cmd.Env = b.env
	}
	cmd.Stdout = b.stdout
	cmd.Stderr = b.stderr
	return b.runner.Run(ctx, cmd)
}

func removeFile(file string) {
	if info, err := os.Stat(file); err == nil && info.Mode().IsRegular() {
		os.Remove(file)
	}
}
