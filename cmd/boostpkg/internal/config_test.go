package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goplus/boostpkg/formula"
	"github.com/goplus/boostpkg/internal/command"
)

func TestHostSettings(t *testing.T) {
	gxx := &command.Recorder{Handle: func(c *command.Cmd) ([]byte, error) {
		return []byte("g++ (Ubuntu 7.5.0-3ubuntu1~18.04) 7.5.0\n"), nil
	}}
	noGxx := &command.Recorder{Handle: func(c *command.Cmd) ([]byte, error) {
		return nil, errors.New("not found")
	}}
	tests := []struct {
		goos, goarch string
		runner       *command.Recorder
		want         formula.Settings
	}{
		{"linux", "amd64", gxx, formula.Settings{
			OS: formula.Linux, Arch: formula.X86_64, BuildType: formula.Release,
			Compiler: formula.Compiler{Name: formula.GCC, Version: "7", LibCxx: formula.LibStdCxx11},
		}},
		{"linux", "arm", noGxx, formula.Settings{
			OS: formula.Linux, Arch: formula.ARMv7, BuildType: formula.Release,
			Compiler: formula.Compiler{Name: formula.GCC, LibCxx: formula.LibStdCxx11},
		}},
		{"windows", "386", noGxx, formula.Settings{
			OS: formula.Windows, Arch: formula.X86, BuildType: formula.Release,
			Compiler: formula.Compiler{Name: formula.VisualStudio, Version: "15", Runtime: formula.RuntimeMD},
		}},
		{"darwin", "arm64", noGxx, formula.Settings{
			OS: formula.Macos, Arch: formula.ARMv8, BuildType: formula.Release,
			Compiler: formula.Compiler{Name: formula.AppleClang, LibCxx: formula.LibCxxLLVM},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got := hostSettings(context.Background(), tt.runner, tt.goos, tt.goarch)
			if got != tt.want {
				t.Errorf("hostSettings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func resetFlags(t *testing.T) {
	t.Cleanup(func() {
		profilePath, settingArgs, optionArgs = "", nil, nil
	})
}

func TestLoadConfigProfileAndOverrides(t *testing.T) {
	resetFlags(t)
	profilePath = filepath.Join(t.TempDir(), "linux.yaml")
	profile := `settings:
  os: Linux
  arch: x86_64
  build_type: Release
  compiler: gcc
  compiler.version: "7"
options:
  shared: true
`
	if err := os.WriteFile(profilePath, []byte(profile), 0o644); err != nil {
		t.Fatal(err)
	}
	settingArgs = []string{"build_type=Debug"}
	optionArgs = []string{"without_regex=True"}

	cfg, err := loadConfig(context.Background(), &command.Recorder{})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Settings.BuildType != formula.Debug {
		t.Errorf("build_type = %s, want Debug", cfg.Settings.BuildType)
	}
	if !cfg.Options.IsShared() || !cfg.Options.Without.Excluded(formula.Regex) {
		t.Errorf("options = %+v", cfg.Options)
	}
}

func TestLoadConfigRejectsUnknownOption(t *testing.T) {
	resetFlags(t)
	optionArgs = []string{"without_gui=True"}
	_, err := loadConfig(context.Background(), &command.Recorder{})
	if !errors.Is(err, formula.ErrUnknownOption) {
		t.Fatalf("loadConfig = %v, want ErrUnknownOption", err)
	}
}

func TestResolveConfigHintsMissingCompilerVersion(t *testing.T) {
	resetFlags(t)
	profilePath = filepath.Join(t.TempDir(), "noversion.yaml")
	profile := "settings:\n  os: Linux\n  arch: x86_64\n  build_type: Release\n  compiler: gcc\n"
	if err := os.WriteFile(profilePath, []byte(profile), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := resolveConfig(context.Background(), &command.Recorder{})
	if !errors.Is(err, formula.ErrInvalidValue) {
		t.Fatalf("resolveConfig = %v, want ErrInvalidValue", err)
	}
	if !strings.Contains(err.Error(), "-s compiler.version=") {
		t.Errorf("error %q has no hint", err)
	}
}
