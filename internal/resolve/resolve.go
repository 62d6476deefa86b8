// Package resolve turns a caller supplied configuration into a consistent
// one by applying the recipe's platform override rules.
package resolve

import (
	"errors"
	"fmt"

	"github.com/goplus/boostpkg/formula"
)

// ErrInvalidConfiguration is returned when a configuration cannot be
// repaired by any override rule.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Host describes the machine running the build.
type Host struct {
	// WordSize is the native pointer width in bits (32 or 64).
	WordSize int
}

// Resolved is a configuration after every override rule was applied.
type Resolved struct {
	formula.Config

	// Overrides names the rules that changed the configuration.
	Overrides []string
	// Warnings lists the overrides that must be reported to the caller.
	Warnings []string
}

// HeaderOnly reports whether nothing gets compiled.
func (r *Resolved) HeaderOnly() bool {
	return r.Options.HeaderOnly
}

// Resolve validates cfg and applies the override rules in order. cfg is
// never modified; resolving r.Config again yields r.Config unchanged and
// no warnings.
func Resolve(cfg formula.Config, host Host) (*Resolved, error) {
	if err := check(&cfg, host); err != nil {
		return nil, err
	}
	r := &Resolved{Config: cfg.Clone()}
	dropUnsupportedOptions(r)
	for _, rule := range rules {
		before := r.Key()
		rule.apply(r, host)
		if r.Key() != before {
			r.Overrides = append(r.Overrides, rule.name)
		}
	}
	return r, nil
}

func check(cfg *formula.Config, host Host) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	if host.WordSize != 32 && host.WordSize != 64 {
		return fmt.Errorf("%w: host word size %d", ErrInvalidConfiguration, host.WordSize)
	}
	s := cfg.Settings
	switch {
	case s.Compiler.Name == formula.VisualStudio && s.OS != formula.Windows:
		return fmt.Errorf("%w: %s is only available on %s", ErrInvalidConfiguration, formula.VisualStudio, formula.Windows)
	case s.Compiler.Name == formula.AppleClang && s.OS != formula.Macos:
		return fmt.Errorf("%w: %s is only available on %s", ErrInvalidConfiguration, formula.AppleClang, formula.Macos)
	case s.OS == formula.Macos && s.Arch.WordSize() != 64:
		return fmt.Errorf("%w: arch %s is not supported on %s", ErrInvalidConfiguration, s.Arch, s.OS)
	}
	return nil
}

// dropUnsupportedOptions removes options the toolchain has no use for:
// Visual Studio has no notion of -fPIC.
func dropUnsupportedOptions(r *Resolved) {
	if r.Settings.Compiler.Name == formula.VisualStudio {
		r.Options.FPIC = nil
	}
}
