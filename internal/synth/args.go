package synth

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/goplus/boostpkg/formula"
	"github.com/goplus/boostpkg/internal/resolve"
)

// Versions of the compression libraries built into Boost.Iostreams.
const (
	BZip2Version = "1.0.6"
	ZlibVersion  = "1.2.11"
)

// Dirs locates the trees the b2 command line refers to.
type Dirs struct {
	Source string // folder holding boost/, bzip2-x.y.z/ and zlib-x.y.z/
	Build  string // per-configuration build folder
}

// BZip2Source is where the bzip2 sources are unpacked.
func (d Dirs) BZip2Source() string {
	return filepath.Join(d.Source, "bzip2-"+BZip2Version)
}

// ZlibSource is where the zlib sources are unpacked.
func (d Dirs) ZlibSource() string {
	return filepath.Join(d.Source, "zlib-"+ZlibVersion)
}

// Toolset returns the b2 toolset property value for the compiler, or false
// when b2 should pick its default.
func Toolset(c formula.Compiler) (string, bool) {
	switch c.Name {
	case formula.VisualStudio:
		return "msvc-" + msvcVersion(c.Version), true
	case formula.GCC, formula.Clang:
		// gcc and clang are called without version suffix, the build
		// environment is expected to redirect them to the right compiler.
		return c.Name, true
	case formula.AppleClang:
		return "darwin", true
	}
	return "", false
}

// msvcVersion maps a Visual Studio product version to the toolset version.
func msvcVersion(version string) string {
	if version == "15" {
		return "14.1"
	}
	return version + ".0"
}

// Args returns the ordered b2 arguments for r. jobs <= 0 uses the number of
// CPUs. Header-only packages are not built and have no arguments.
func Args(r *resolve.Resolved, dirs Dirs, jobs int) []string {
	if r.HeaderOnly() {
		return nil
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	s := r.Settings

	args := []string{
		"--build-dir=" + filepath.Join(dirs.Build, "tmp"),
		"--layout=" + string(r.Options.Layout),
		"--abbreviate-paths",
		"-j" + strconv.Itoa(jobs),
		"-d2",
	}
	for _, lib := range r.Options.Without.ExcludedLibraries() {
		args = append(args, "--without-"+lib.String())
	}

	if toolset, ok := Toolset(s.Compiler); ok {
		args = append(args, "toolset="+toolset)
	}
	args = append(args,
		"variant="+strings.ToLower(string(s.BuildType)),
		"address-model="+strconv.Itoa(s.Arch.WordSize()),
		"link="+linkMode(r.Options.IsShared()),
		"runtime-link="+linkMode(!staticRuntime(s.Compiler)),
	)

	// Both are passed even when Boost.Iostreams is excluded.
	args = append(args,
		"-sBZIP2_SOURCE="+dirs.BZip2Source(),
		"-sZLIB_SOURCE="+dirs.ZlibSource(),
	)

	f := Flags(r)
	if len(f.CxxFlags) > 0 {
		args = append(args, "cxxflags="+strings.Join(f.CxxFlags, " "))
	}
	if len(f.LinkFlags) > 0 {
		args = append(args, "linkflags="+strings.Join(f.LinkFlags, " "))
	}
	for _, d := range f.Defines {
		args = append(args, "define="+d)
	}
	return args
}

func linkMode(shared bool) string {
	if shared {
		return "shared"
	}
	return "static"
}

func staticRuntime(c formula.Compiler) bool {
	return c.Name == formula.VisualStudio && c.Runtime.StaticRuntime()
}
