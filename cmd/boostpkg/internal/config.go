package internal

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/goplus/boostpkg/formula"
	"github.com/goplus/boostpkg/internal/command"
	"github.com/goplus/boostpkg/internal/resolve"
	"github.com/goplus/boostpkg/internal/toolchain"
)

// loadConfig builds the configuration from the profile, or from the host
// when there is none, and applies the -s and -o overrides.
func loadConfig(ctx context.Context, runner command.Runner) (formula.Config, error) {
	var cfg formula.Config
	if profilePath != "" {
		var err error
		if cfg, err = formula.LoadProfile(profilePath); err != nil {
			return formula.Config{}, err
		}
	} else {
		cfg = formula.NewConfig(hostSettings(ctx, runner, runtime.GOOS, runtime.GOARCH))
	}
	for _, s := range settingArgs {
		if err := cfg.Set("setting", s); err != nil {
			return formula.Config{}, err
		}
	}
	for _, o := range optionArgs {
		if err := cfg.Set("option", o); err != nil {
			return formula.Config{}, err
		}
	}
	return cfg, nil
}

// resolveConfig loads and resolves the configuration, reporting overrides
// that change what the caller asked for.
func resolveConfig(ctx context.Context, runner command.Runner) (*resolve.Resolved, error) {
	cfg, err := loadConfig(ctx, runner)
	if err != nil {
		return nil, err
	}
	r, err := resolve.Resolve(cfg, resolve.Host{WordSize: toolchain.HostWordSize()})
	if err != nil {
		if cfg.Settings.Compiler.Version == "" {
			return nil, fmt.Errorf("%w (no %s version detected, pass -s compiler.version=<version>)", err, cfg.Settings.Compiler.Name)
		}
		return nil, err
	}
	for _, w := range r.Warnings {
		slog.Warn(w)
	}
	return r, nil
}

// hostSettings guesses settings for the machine running boostpkg. The gcc
// version is taken from g++ when it can be run.
func hostSettings(ctx context.Context, runner command.Runner, goos, goarch string) formula.Settings {
	s := formula.Settings{BuildType: formula.Release}
	switch goos {
	case "windows":
		s.OS = formula.Windows
		s.Compiler = formula.Compiler{Name: formula.VisualStudio, Version: "15", Runtime: formula.RuntimeMD}
	case "darwin":
		s.OS = formula.Macos
		s.Compiler = formula.Compiler{Name: formula.AppleClang, LibCxx: formula.LibCxxLLVM}
	case "freebsd":
		s.OS = formula.FreeBSD
		s.Compiler = formula.Compiler{Name: formula.Clang, LibCxx: formula.LibCxxLLVM}
	default:
		s.OS = formula.Linux
		s.Compiler = formula.Compiler{Name: formula.GCC, LibCxx: formula.LibStdCxx11}
		if out, err := runner.Output(ctx, &command.Cmd{Name: "g++", Args: []string{"--version"}}); err == nil {
			if v, ok := toolchain.GCCVersion(out); ok {
				s.Compiler.Version, _, _ = strings.Cut(v, ".")
			}
		}
	}
	switch goarch {
	case "386":
		s.Arch = formula.X86
	case "arm":
		s.Arch = formula.ARMv7
	case "arm64":
		s.Arch = formula.ARMv8
	default:
		s.Arch = formula.X86_64
	}
	return s
}
