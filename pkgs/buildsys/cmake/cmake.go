package cmake

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/goplus/boostpkg/internal/command"
	"github.com/goplus/boostpkg/pkgs/buildsys"
)

type defineValue struct {
	value    string
	typeName string
}

// CMake wraps common CMake build steps with chainable configuration.
type CMake struct {
	runner     command.Runner
	SourceDir  string
	buildDir   string
	installDir string
	generator  string
	buildType  string
	toolchain  string
	Defines    map[string]defineValue
	env        map[string]string
	stdout     io.Writer
	stderr     io.Writer
}

var _ buildsys.BuildSystem = (*CMake)(nil)

// New creates a new CMake helper building sourceDir in buildDir.
func New(runner command.Runner, sourceDir, buildDir string) *CMake {
	return &CMake{
		runner:    runner,
		SourceDir: sourceDir,
		buildDir:  buildDir,
		Defines:   map[string]defineValue{},
		env:       map[string]string{},
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

func (c *CMake) Source(dir string) {
	c.SourceDir = dir
}

func (c *CMake) InstallDir(dir string) {
	c.installDir = dir
}

// Output redirects tool output.
func (c *CMake) Output(stdout, stderr io.Writer) *CMake {
	c.stdout, c.stderr = stdout, stderr
	return c
}

func (c *CMake) Generator(name string) *CMake {
	c.generator = name
	return c
}

func (c *CMake) BuildType(name string) *CMake {
	c.buildType = name
	return c
}

func (c *CMake) Toolchain(path string) *CMake {
	c.toolchain = path
	return c
}

func (c *CMake) Define(key, value string) *CMake {
	if c.Defines == nil {
		c.Defines = map[string]defineValue{}
	}
	c.Defines[key] = defineValue{value: value, typeName: "STRING"}
	return c
}

func (c *CMake) DefineBool(key string, value bool) *CMake {
	if c.Defines == nil {
		c.Defines = map[string]defineValue{}
	}
	if value {
		c.Defines[key] = defineValue{value: "ON", typeName: "BOOL"}
		return c
	}
	c.Defines[key] = defineValue{value: "OFF", typeName: "BOOL"}
	return c
}

func (c *CMake) Env(key, value string) {
	if c.env == nil {
		c.env = map[string]string{}
	}
	c.env[key] = value
}

// Use makes the package installed in pkgDir visible to find_package,
// find_path and find_library.
func (c *CMake) Use(pkgDir string) *CMake {
	includeDir := filepath.Join(pkgDir, "include")
	libDir := filepath.Join(pkgDir, "lib")
	pkgconfigDir := filepath.Join(libDir, "pkgconfig")

	if exists(pkgconfigDir) {
		c.prependEnv("PKG_CONFIG_PATH", pkgconfigDir)
	}
	if exists(pkgDir) {
		c.prependEnv("CMAKE_PREFIX_PATH", pkgDir)
	}
	if exists(includeDir) {
		c.prependEnv("CMAKE_INCLUDE_PATH", includeDir)
	}
	if exists(libDir) {
		c.prependEnv("CMAKE_LIBRARY_PATH", libDir)
	}
	return c
}

func (c *CMake) Configure(ctx context.Context, args ...string) error {
	if err := os.MkdirAll(c.buildDir, 0755); err != nil {
		return err
	}
	cmakeArgs := []string{"-S", c.SourceDir, "-B", c.buildDir}
	if c.generator != "" {
		cmakeArgs = append(cmakeArgs, "-G", c.generator)
	}
	if c.installDir != "" {
		c.Define("CMAKE_INSTALL_PREFIX", c.installDir)
	}
	if c.toolchain != "" {
		c.Define("CMAKE_TOOLCHAIN_FILE", c.toolchain)
	}
	if c.buildType != "" {
		c.Define("CMAKE_BUILD_TYPE", c.buildType)
	}
	cmakeArgs = append(cmakeArgs, c.definesArgs()...)
	cmakeArgs = append(cmakeArgs, args...)
	return c.run(ctx, cmakeArgs)
}

func (c *CMake) Build(ctx context.Context, args ...string) error {
	cmdArgs := []string{"--build", c.buildDir}
	if c.buildType != "" {
		cmdArgs = append(cmdArgs, "--config", c.buildType)
	}
	return c.run(ctx, append(cmdArgs, args...))
}

func (c *CMake) Install(ctx context.Context, args ...string) error {
	cmdArgs := []string{"--install", c.buildDir}
	if c.installDir != "" {
		cmdArgs = append(cmdArgs, "--prefix", c.installDir)
	}
	return c.run(ctx, append(cmdArgs, args...))
}

// OutputDir returns the install dir if set, otherwise the build dir.
func (c *CMake) OutputDir() string {
	if c.installDir != "" {
		return c.installDir
	}
	return c.buildDir
}

// BuildDir returns the CMake binary dir.
func (c *CMake) BuildDir() string {
	return c.buildDir
}

func (c *CMake) definesArgs() []string {
	if len(c.Defines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Defines))
	for k := range c.Defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		def := c.Defines[k]
		if def.typeName != "" {
			args = append(args, "-D"+k+":"+def.typeName+"="+def.value)
			continue
		}
		args = append(args, "-D"+k+"="+def.value)
	}
	return args
}

func (c *CMake) run(ctx context.Context, args []string) error {
	cmd := &command.Cmd{Name: "cmake", Args: args, Stdout: c.stdout, Stderr: c.stderr}
	if len(c.env) > 0 {
		cmd.Env = c.env
	}
	return c.runner.Run(ctx, cmd)
}

// prependEnv prepends a value to a path list, starting from the process
// environment the first time.
func (c *CMake) prependEnv(key, value string) {
	current, ok := c.env[key]
	if !ok {
		current = os.Getenv(key)
	}
	if current == "" {
		c.Env(key, value)
		return
	}
	sep := ":"
	if runtime.GOOS == "windows" {
		sep = ";"
	}
	c.Env(key, value+sep+current)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Join joins values into a CMake list.
func Join(values []string) string {
	return strings.Join(values, ";")
}
