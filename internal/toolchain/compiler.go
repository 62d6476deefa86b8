// Package toolchain inspects the compilers installed on the build host.
package toolchain

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/goplus/boostpkg/formula"
	"github.com/goplus/boostpkg/internal/command"
	"github.com/goplus/boostpkg/pkgs/gnu"
)

// ErrCompilerVersion is returned when the installed compiler does not match
// compiler.version.
var ErrCompilerVersion = errors.New("compiler version mismatch")

// gxxBanner matches the first line of g++ --version, for example
// "g++ (Ubuntu 7.5.0-3ubuntu1~18.04) 7.5.0".
var gxxBanner = regexp.MustCompile(`^g\+\+ \(.*\) (\S+)`)

// CheckCompiler verifies the compiler that b2 will pick up is the one the
// settings ask for. Only gcc is checked, as b2 calls it unversioned.
func CheckCompiler(ctx context.Context, runner command.Runner, c formula.Compiler) error {
	if c.Name != formula.GCC {
		return nil
	}
	out, err := runner.Output(ctx, &command.Cmd{Name: "g++", Args: []string{"--version"}})
	if err != nil {
		return fmt.Errorf("check compiler: %w", err)
	}
	found, ok := GCCVersion(out)
	if !ok {
		return fmt.Errorf("%w: cannot parse g++ --version output %q", ErrCompilerVersion, firstLine(out))
	}
	if !gnu.HasPrefix(found, c.Version) {
		return fmt.Errorf("%w: g++ is %s, want %s", ErrCompilerVersion, found, c.Version)
	}
	return nil
}

// GCCVersion extracts the version from g++ --version output.
func GCCVersion(out []byte) (string, bool) {
	m := gxxBanner.FindSubmatch(firstLine(out))
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

func firstLine(out []byte) []byte {
	s := bufio.NewScanner(bytes.NewReader(out))
	if s.Scan() {
		return bytes.TrimSpace(s.Bytes())
	}
	return nil
}
