// Package synth derives the b2 command line and the compiler flags from a
// resolved configuration. Everything here is a pure function of its input.
package synth

import (
	"github.com/goplus/boostpkg/formula"
	"github.com/goplus/boostpkg/internal/resolve"
)

// FlagSet holds the compiler flags, linker flags and preprocessor defines
// Boost is built with. Consumers of the package compile with the same set
// to stay ABI compatible.
type FlagSet struct {
	CxxFlags  []string `json:"cxxflags,omitempty" yaml:"cxxflags,omitempty"`
	LinkFlags []string `json:"linkflags,omitempty" yaml:"linkflags,omitempty"`
	Defines   []string `json:"defines,omitempty" yaml:"defines,omitempty"`
}

// Empty reports whether the set has no entries at all.
func (f FlagSet) Empty() bool {
	return len(f.CxxFlags) == 0 && len(f.LinkFlags) == 0 && len(f.Defines) == 0
}

// Flags returns the flag set of r. It is used both for the build and for
// describing the package, so both always agree. Header-only packages have
// an empty flag set.
func Flags(r *resolve.Resolved) FlagSet {
	var f FlagSet
	if r.HeaderOnly() {
		return f
	}
	c := r.Settings.Compiler
	msvc := c.Name == formula.VisualStudio

	if std := r.Options.CppStd; std != formula.CppStdDefault {
		if msvc {
			f.CxxFlags = append(f.CxxFlags, "/std:c++"+string(std))
			// std::auto_ptr and friends are gone from the C++17 MSVC STL
			// but still used by Boost 1.66.
			f.Defines = append(f.Defines, "_HAS_AUTO_PTR_ETC=1")
		} else {
			f.CxxFlags = append(f.CxxFlags, "-std=c++"+string(std))
		}
	}

	if !msvc && r.Options.IsFPIC() {
		f.CxxFlags = append(f.CxxFlags, "-fPIC")
	}

	// The dual ABI is orthogonal to the C++ standard, see
	// https://gcc.gnu.org/onlinedocs/libstdc++/manual/using_dual_abi.html
	if c.Name == formula.GCC || c.IsClang() {
		switch c.LibCxx {
		case formula.LibStdCxx:
			f.Defines = append(f.Defines, "_GLIBCXX_USE_CXX11_ABI=0")
		case formula.LibStdCxx11:
			f.Defines = append(f.Defines, "_GLIBCXX_USE_CXX11_ABI=1")
		}
	}

	if c.IsClang() {
		stdlib := "-stdlib=libstdc++"
		if c.LibCxx == formula.LibCxxLLVM {
			stdlib = "-stdlib=libc++"
		}
		f.CxxFlags = append(f.CxxFlags, stdlib)
		f.LinkFlags = append(f.LinkFlags, stdlib)
	}
	return f
}
