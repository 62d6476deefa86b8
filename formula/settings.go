package formula

import (
	"fmt"
	"slices"
	"strings"
)

type (
	OS        string
	Arch      string
	BuildType string
	Runtime   string
	LibCxx    string
)

const (
	Windows OS = "Windows"
	Linux   OS = "Linux"
	Macos   OS = "Macos"
	FreeBSD OS = "FreeBSD"
)

const (
	X86    Arch = "x86"
	X86_64 Arch = "x86_64"
	ARMv7  Arch = "armv7"
	ARMv8  Arch = "armv8"
)

const (
	Debug   BuildType = "Debug"
	Release BuildType = "Release"
)

// Compiler families.
const (
	VisualStudio = "Visual Studio"
	GCC          = "gcc"
	Clang        = "clang"
	AppleClang   = "apple-clang"
)

// Visual Studio runtimes. The "T" variants link the C runtime statically.
const (
	RuntimeMD  Runtime = "MD"
	RuntimeMT  Runtime = "MT"
	RuntimeMDd Runtime = "MDd"
	RuntimeMTd Runtime = "MTd"
)

const (
	LibStdCxx   LibCxx = "libstdc++"
	LibStdCxx11 LibCxx = "libstdc++11"
	LibCxxLLVM  LibCxx = "libc++"
)

var (
	knownOS        = []OS{Windows, Linux, Macos, FreeBSD}
	knownArch      = []Arch{X86, X86_64, ARMv7, ARMv8}
	knownBuildType = []BuildType{Debug, Release}
	knownCompiler  = []string{VisualStudio, GCC, Clang, AppleClang}
	knownRuntime   = []Runtime{RuntimeMD, RuntimeMT, RuntimeMDd, RuntimeMTd}
	knownLibCxx    = []LibCxx{LibStdCxx, LibStdCxx11, LibCxxLLVM}
)

// WordSize returns the pointer width of the architecture in bits.
func (a Arch) WordSize() int {
	switch a {
	case X86, ARMv7:
		return 32
	}
	return 64
}

// StaticRuntime reports whether the runtime links the C runtime statically.
func (r Runtime) StaticRuntime() bool {
	return strings.Contains(string(r), "MT")
}

// Compiler identifies the toolchain.
type Compiler struct {
	Name    string
	Version string
	Runtime Runtime // Visual Studio only
	LibCxx  LibCxx  // not for Visual Studio
}

// IsClang reports whether the compiler belongs to the clang family.
func (c Compiler) IsClang() bool {
	return strings.Contains(c.Name, "clang")
}

// Settings describe the target platform and toolchain.
type Settings struct {
	OS        OS
	Arch      Arch
	BuildType BuildType
	Compiler  Compiler
}

// SetSetting assigns a setting by its key, e.g. "compiler.libcxx".
func (s *Settings) SetSetting(key, value string) error {
	switch key {
	case "os":
		return setEnum(&s.OS, knownOS, key, value)
	case "arch":
		return setEnum(&s.Arch, knownArch, key, value)
	case "build_type":
		return setEnum(&s.BuildType, knownBuildType, key, value)
	case "compiler":
		return setEnum(&s.Compiler.Name, knownCompiler, key, value)
	case "compiler.version":
		if value == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidValue, key)
		}
		s.Compiler.Version = value
		return nil
	case "compiler.runtime":
		return setEnum(&s.Compiler.Runtime, knownRuntime, key, value)
	case "compiler.libcxx":
		return setEnum(&s.Compiler.LibCxx, knownLibCxx, key, value)
	}
	return fmt.Errorf("%w: %q", ErrUnknownSetting, key)
}

// Validate checks that every setting holds a known value and that
// compiler sub-settings are only used with the compilers that define them.
func (s *Settings) Validate() error {
	if err := checkEnum(s.OS, knownOS, "os"); err != nil {
		return err
	}
	if err := checkEnum(s.Arch, knownArch, "arch"); err != nil {
		return err
	}
	if err := checkEnum(s.BuildType, knownBuildType, "build_type"); err != nil {
		return err
	}
	if err := checkEnum(s.Compiler.Name, knownCompiler, "compiler"); err != nil {
		return err
	}
	if s.Compiler.Version == "" {
		return fmt.Errorf("%w: compiler.version is not set", ErrInvalidValue)
	}
	if s.Compiler.Name == VisualStudio {
		if err := checkEnum(s.Compiler.Runtime, knownRuntime, "compiler.runtime"); err != nil {
			return err
		}
		if s.Compiler.LibCxx != "" {
			return fmt.Errorf("%w: compiler.libcxx does not apply to %s", ErrInvalidValue, VisualStudio)
		}
		return nil
	}
	if s.Compiler.Runtime != "" {
		return fmt.Errorf("%w: compiler.runtime does not apply to %s", ErrInvalidValue, s.Compiler.Name)
	}
	if s.Compiler.LibCxx != "" {
		return checkEnum(s.Compiler.LibCxx, knownLibCxx, "compiler.libcxx")
	}
	return nil
}

func setEnum[T ~string](dst *T, known []T, key, value string) error {
	if err := checkEnum(T(value), known, key); err != nil {
		return err
	}
	*dst = T(value)
	return nil
}

func checkEnum[T ~string](v T, known []T, key string) error {
	if !slices.Contains(known, v) {
		return fmt.Errorf("%w: %s=%q, possible values are %v", ErrInvalidValue, key, string(v), known)
	}
	return nil
}
