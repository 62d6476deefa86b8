// Package testpkg verifies a package by building and running a small
// consumer project against it.
package testpkg

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goplus/boostpkg/internal/command"
	"github.com/goplus/boostpkg/internal/pkginfo"
	"github.com/goplus/boostpkg/pkgs/buildsys/cmake"
)

//go:embed project
var project embed.FS

var hostOS = runtime.GOOS

// DataFile is fed to every test program on stdin.
const DataFile = "data.txt"

// WriteProject writes the bundled consumer project to dir.
func WriteProject(dir string) error {
	sub, err := fs.Sub(project, "project")
	if err != nil {
		return err
	}
	return fs.WalkDir(sub, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dst := filepath.Join(dir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		data, err := fs.ReadFile(sub, path)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0o644)
	})
}

// Options locates the trees of a consumer build.
type Options struct {
	ProjectDir string
	BuildDir   string
	PackageDir string
	// BuildType is the CMake build type, Release when empty.
	BuildType string
	// Python is the interpreter importing the extension module, python
	// when empty.
	Python string

	Stdout io.Writer
	Stderr io.Writer
}

// Definitions returns the CMake cache entries describing d to the
// consumer project. pkgDir holds the package d describes.
func Definitions(d *pkginfo.Descriptor, pkgDir string) map[string]string {
	defs := map[string]string{
		"BOOST_INCLUDE_DIR": joinDirs(pkgDir, d.IncludeDirs),
		"BOOST_LIB_DIR":     joinDirs(pkgDir, d.LibDirs),
		"BOOST_DEFINES":     cmake.Join(d.Defines),
		"BOOST_CXXFLAGS":    strings.Join(d.CxxFlags, " "),
		"BOOST_LINKFLAGS":   strings.Join(d.LinkFlags, " "),
	}
	if d.HeaderOnly {
		defs["HEADER_ONLY"] = "TRUE"
		return defs
	}
	if lib, ok := findLib(d.Libs, "regex"); ok {
		defs["WITH_REGEX"] = "TRUE"
		defs["BOOST_REGEX_LIB"] = lib
	}
	if lib, ok := findLib(d.Libs, "python"); ok {
		defs["WITH_PYTHON"] = "TRUE"
		defs["BOOST_PYTHON_LIB"] = lib
	}
	return defs
}

// Programs lists the executables the consumer project builds for d.
func Programs(d *pkginfo.Descriptor) []string {
	progs := []string{"lambda"}
	if _, ok := findLib(d.Libs, "regex"); ok && !d.HeaderOnly {
		progs = append(progs, "regex_exe")
	}
	return progs
}

// Run configures and builds the consumer project against the package in
// opts.PackageDir, then runs its programs.
func Run(ctx context.Context, runner command.Runner, d *pkginfo.Descriptor, opts Options) error {
	if opts.BuildType == "" {
		opts.BuildType = "Release"
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Python == "" {
		opts.Python = "python"
	}

	c := cmake.New(runner, opts.ProjectDir, opts.BuildDir).
		Output(opts.Stdout, opts.Stderr).
		BuildType(opts.BuildType).
		Use(opts.PackageDir)
	defs := Definitions(d, opts.PackageDir)
	_, withPython := defs["WITH_PYTHON"]
	if withPython && hostOS == "windows" {
		include, lib, err := PythonPaths(ctx, runner, opts.Python)
		if err != nil {
			return err
		}
		defs["PYTHON_INCLUDE"] = include
		defs["PYTHON_LIB"] = lib
	}
	for k, v := range defs {
		c.Define(k, v)
	}
	if err := c.Configure(ctx); err != nil {
		return fmt.Errorf("configure consumer project: %w", err)
	}
	if err := c.Build(ctx); err != nil {
		return fmt.Errorf("build consumer project: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(opts.ProjectDir, DataFile))
	if err != nil {
		return err
	}
	env := runtimeEnv(d, opts.PackageDir)
	for _, prog := range Programs(d) {
		exe, err := findProgram(opts.BuildDir, opts.BuildType, prog)
		if err != nil {
			return err
		}
		slog.Info("Running: " + prog)
		cmd := &command.Cmd{
			Name:   exe,
			Dir:    filepath.Dir(exe),
			Env:    env,
			Stdin:  bytes.NewReader(data),
			Stdout: opts.Stdout,
			Stderr: opts.Stderr,
		}
		if err := runner.Run(ctx, cmd); err != nil {
			return fmt.Errorf("run %s: %w", prog, err)
		}
	}
	if withPython {
		return runPython(ctx, runner, opts, env)
	}
	return nil
}

// PythonModule is the extension module built by the consumer project.
const PythonModule = "hello_ext"

// PythonPaths asks the interpreter for its header folder and import library,
// which CMake does not find on its own on Windows.
func PythonPaths(ctx context.Context, runner command.Runner, python string) (include, lib string, err error) {
	out, err := runner.Output(ctx, &command.Cmd{
		Name: python,
		Args: []string{"-c", "import sys; print(sys.base_prefix); print('%d%d' % sys.version_info[:2])"},
	})
	if err != nil {
		return "", "", fmt.Errorf("query python: %w", err)
	}
	lines := strings.Split(strings.TrimSpace(strings.ReplaceAll(string(out), "\r\n", "\n")), "\n")
	if len(lines) != 2 {
		return "", "", fmt.Errorf("query python: unexpected output %q", out)
	}
	prefix, version := lines[0], lines[1]
	return filepath.Join(prefix, "include"), filepath.Join(prefix, "libs", "python"+version+".lib"), nil
}

// runPython imports the extension module from its output folder and calls
// greet.
func runPython(ctx context.Context, runner command.Runner, opts Options, env map[string]string) error {
	dir, err := findModuleDir(opts.BuildDir, opts.BuildType)
	if err != nil {
		return err
	}
	slog.Info("Calling: Python " + PythonModule + ".greet")
	cmd := &command.Cmd{
		Name:   opts.Python,
		Args:   []string{"-c", "import " + PythonModule + "; print(" + PythonModule + ".greet())"},
		Dir:    dir,
		Env:    env,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	}
	if err := runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("import %s: %w", PythonModule, err)
	}
	return nil
}

// findModuleDir returns the folder holding the built extension module.
func findModuleDir(buildDir, buildType string) (string, error) {
	for _, dir := range []string{
		filepath.Join(buildDir, "bin"),
		filepath.Join(buildDir, "bin", buildType),
	} {
		for _, ext := range []string{".so", ".pyd", ".dylib"} {
			if _, err := os.Stat(filepath.Join(dir, PythonModule+ext)); err == nil {
				return dir, nil
			}
		}
	}
	return "", fmt.Errorf("%s: %w", PythonModule, fs.ErrNotExist)
}

func findLib(libs []string, name string) (string, bool) {
	for _, lib := range libs {
		if strings.Contains(lib, name) {
			return lib, true
		}
	}
	return "", false
}

func joinDirs(root string, dirs []string) string {
	abs := make([]string, len(dirs))
	for i, dir := range dirs {
		abs[i] = filepath.Join(root, dir)
	}
	return cmake.Join(abs)
}

// findProgram looks for prog in the single and multi-config output folders.
func findProgram(buildDir, buildType, prog string) (string, error) {
	if hostOS == "windows" {
		prog += ".exe"
	}
	for _, dir := range []string{
		filepath.Join(buildDir, "bin"),
		filepath.Join(buildDir, "bin", buildType),
	} {
		file := filepath.Join(dir, prog)
		if _, err := os.Stat(file); err == nil {
			return file, nil
		}
	}
	return "", fmt.Errorf("%s: %w", prog, fs.ErrNotExist)
}

// runtimeEnv lets shared builds find the package libraries at run time.
func runtimeEnv(d *pkginfo.Descriptor, pkgDir string) map[string]string {
	if !d.Shared {
		return nil
	}
	var key string
	var dirs []string
	switch hostOS {
	case "windows":
		key, dirs = "PATH", d.BinDirs
	case "darwin":
		key, dirs = "DYLD_LIBRARY_PATH", d.LibDirs
	default:
		key, dirs = "LD_LIBRARY_PATH", d.LibDirs
	}
	paths := make([]string, 0, len(dirs)+1)
	for _, dir := range dirs {
		paths = append(paths, filepath.Join(pkgDir, dir))
	}
	if cur := os.Getenv(key); cur != "" {
		paths = append(paths, cur)
	}
	return map[string]string{key: strings.Join(paths, string(os.PathListSeparator))}
}
