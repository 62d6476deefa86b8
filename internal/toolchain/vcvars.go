package toolchain

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goplus/boostpkg/formula"
	"github.com/goplus/boostpkg/internal/command"
)

// VCVars returns the environment set up by vcvarsall.bat for the Visual
// Studio version and target architecture in s. Bootstrap and b2 run with
// this environment.
func VCVars(ctx context.Context, runner command.Runner, s formula.Settings) (map[string]string, error) {
	if s.Compiler.Name != formula.VisualStudio {
		return nil, nil
	}
	arch, err := vcvarsArch(s.Arch)
	if err != nil {
		return nil, err
	}
	script, err := vcvarsall(ctx, runner, s.Compiler.Version)
	if err != nil {
		return nil, err
	}
	out, err := runner.Output(ctx, &command.Cmd{
		Name: "cmd",
		Args: []string{"/c", fmt.Sprintf(`call "%s" %s >nul && set`, script, arch)},
	})
	if err != nil {
		return nil, fmt.Errorf("vcvarsall %s: %w", arch, err)
	}
	return ParseEnv(out), nil
}

// ParseEnv parses the output of "set" into a map.
func ParseEnv(out []byte) map[string]string {
	env := make(map[string]string)
	s := bufio.NewScanner(bytes.NewReader(out))
	for s.Scan() {
		line := strings.TrimRight(s.Text(), "\r")
		if k, v, ok := strings.Cut(line, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

func vcvarsArch(a formula.Arch) (string, error) {
	switch a {
	case formula.X86:
		return "x86", nil
	case formula.X86_64:
		return "amd64", nil
	case formula.ARMv7:
		return "x86_arm", nil
	case formula.ARMv8:
		return "x86_arm64", nil
	}
	return "", fmt.Errorf("vcvarsall: unsupported arch %q", a)
}

// vcvarsall locates vcvarsall.bat. Visual Studio 2017 and later are found
// with vswhere, older releases through VS<version>0COMNTOOLS.
func vcvarsall(ctx context.Context, runner command.Runner, version string) (string, error) {
	major, err := strconv.Atoi(version)
	if err != nil {
		return "", fmt.Errorf("vcvarsall: bad Visual Studio version %q", version)
	}
	if major < 15 {
		key := fmt.Sprintf("VS%d0COMNTOOLS", major)
		tools := os.Getenv(key)
		if tools == "" {
			return "", fmt.Errorf("vcvarsall: Visual Studio %s not found, %s is not set", version, key)
		}
		return filepath.Join(tools, "..", "..", "VC", "vcvarsall.bat"), nil
	}

	vswhere := filepath.Join(os.Getenv("ProgramFiles(x86)"), "Microsoft Visual Studio", "Installer", "vswhere.exe")
	out, err := runner.Output(ctx, &command.Cmd{
		Name: vswhere,
		Args: []string{
			"-latest", "-products", "*",
			"-version", fmt.Sprintf("[%d.0,%d.0)", major, major+1),
			"-property", "installationPath",
		},
	})
	if err != nil {
		return "", fmt.Errorf("vswhere: %w", err)
	}
	dir := string(firstLine(out))
	if dir == "" {
		return "", fmt.Errorf("vcvarsall: Visual Studio %s not found", version)
	}
	return filepath.Join(dir, "VC", "Auxiliary", "Build", "vcvarsall.bat"), nil
}
