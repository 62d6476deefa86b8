package resolve

import (
	"github.com/goplus/boostpkg/formula"
)

type rule struct {
	name  string
	apply func(r *Resolved, host Host)
}

// rules run once, in this order. A rule only reads settings it never writes
// and only writes options no earlier rule reads, so one pass reaches the
// fixed point.
var rules = []rule{
	{"msvc-static-runtime-link", forceStaticLink},
	{"python-runtime-mismatch", excludePythonOnStaticRuntime},
	{"python-mingw", excludePythonOnMinGW},
	{"python-word-size", excludePythonOnForeignWordSize},
	{"python-platform", excludePythonOffWindows},
	{"mingw-cxx11-abi", forceCXX11ABIOnMinGW},
	{"header-only", dropCompiledOptions},
}

func isMSVC(s formula.Settings) bool {
	return s.Compiler.Name == formula.VisualStudio
}

func isMinGW(s formula.Settings) bool {
	return s.OS == formula.Windows && s.Compiler.Name == formula.GCC
}

// Shared Boost with a static C runtime is not supported by MSVC.
func forceStaticLink(r *Resolved, _ Host) {
	if isMSVC(r.Settings) && r.Options.IsShared() && r.Settings.Compiler.Runtime.StaticRuntime() {
		*r.Options.Shared = false
	}
}

// The Python library is built against the dynamic runtime (MD), it cannot
// be linked into MT builds.
func excludePythonOnStaticRuntime(r *Resolved, _ Host) {
	if isMSVC(r.Settings) && r.Settings.Compiler.Runtime.StaticRuntime() {
		r.Options.Without.Set(formula.Python, true)
	}
}

// MinGW lacks the compiler redirect needed by Boost.Python, see
// https://github.com/Alexpux/MINGW-packages/issues/3224.
func excludePythonOnMinGW(r *Resolved, _ Host) {
	if isMinGW(r.Settings) {
		r.Options.Without.Set(formula.Python, true)
	}
}

// The Python interpreter must match the target word size.
func excludePythonOnForeignWordSize(r *Resolved, host Host) {
	if r.Settings.Arch.WordSize() != host.WordSize {
		r.Options.Without.Set(formula.Python, true)
	}
}

// Boost.Python is only built on Windows; there the caller decides.
func excludePythonOffWindows(r *Resolved, _ Host) {
	if r.Settings.OS != formula.Windows {
		r.Options.Without.Set(formula.Python, true)
	}
}

// MinGW must use the C++11 ABI, otherwise libstdc++.a and Boost disagree
// on std::runtime_error and linking fails with multiple definitions.
func forceCXX11ABIOnMinGW(r *Resolved, _ Host) {
	if isMinGW(r.Settings) && r.Settings.Compiler.LibCxx != formula.LibStdCxx11 {
		r.Warnings = append(r.Warnings, `Forcing compiler.libcxx to be "libstdc++11"`)
		r.Settings.Compiler.LibCxx = formula.LibStdCxx11
	}
}

// Link mode, PIC and layout mean nothing when nothing is compiled.
func dropCompiledOptions(r *Resolved, _ Host) {
	if r.Options.HeaderOnly {
		r.Options.Shared = nil
		r.Options.FPIC = nil
		r.Options.Layout = ""
	}
}
