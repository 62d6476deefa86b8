package toolchain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goplus/boostpkg/formula"
	"github.com/goplus/boostpkg/internal/command"
)

const ubuntuBanner = `g++ (Ubuntu 7.5.0-3ubuntu1~18.04) 7.5.0
Copyright (C) 2017 Free Software Foundation, Inc.
This is free software; see the source for copying conditions.
`

func banner(out string) *command.Recorder {
	return &command.Recorder{Handle: func(c *command.Cmd) ([]byte, error) {
		return []byte(out), nil
	}}
}

func TestGCCVersion(t *testing.T) {
	tests := []struct {
		out  string
		want string
		ok   bool
	}{
		{ubuntuBanner, "7.5.0", true},
		{"g++ (GCC) 8.3.1 20190311 (Red Hat 8.3.1-3)\n", "8.3.1", true},
		{"g++ (GCC) 12.2.0\n", "12.2.0", true},
		{"clang version 6.0.0\n", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := GCCVersion([]byte(tt.out))
		if tt.ok && (!ok || got != tt.want) {
			t.Errorf("GCCVersion(%q) = %q, %v, want %q", tt.out, got, ok, tt.want)
		}
		if !tt.ok && ok {
			t.Errorf("GCCVersion(%q) = %q, want no match", tt.out, got)
		}
	}
}

func TestCheckCompiler(t *testing.T) {
	ctx := context.Background()
	gcc := func(v string) formula.Compiler { return formula.Compiler{Name: formula.GCC, Version: v} }

	r := banner(ubuntuBanner)
	for _, v := range []string{"7", "7.5", "7.5.0"} {
		if err := CheckCompiler(ctx, r, gcc(v)); err != nil {
			t.Errorf("version %s: %v", v, err)
		}
	}
	if names := r.Names(); len(names) != 3 || names[0] != "g++" {
		t.Errorf("commands = %v", names)
	}

	for _, v := range []string{"8", "7.4", "75"} {
		if err := CheckCompiler(ctx, r, gcc(v)); !errors.Is(err, ErrCompilerVersion) {
			t.Errorf("version %s: err = %v, want ErrCompilerVersion", v, err)
		}
	}

	if err := CheckCompiler(ctx, banner("weird"), gcc("7")); !errors.Is(err, ErrCompilerVersion) {
		t.Errorf("unparsable banner: err = %v", err)
	}

	missing := &command.Recorder{Handle: func(c *command.Cmd) ([]byte, error) {
		return nil, &command.Error{Name: c.Name, ExitCode: -1, Err: errors.New("not found")}
	}}
	var cerr *command.Error
	if err := CheckCompiler(ctx, missing, gcc("7")); !errors.As(err, &cerr) {
		t.Errorf("missing g++: err = %v, want *command.Error", err)
	}

	none := &command.Recorder{}
	if err := CheckCompiler(ctx, none, formula.Compiler{Name: formula.Clang, Version: "6.0"}); err != nil {
		t.Errorf("clang: %v", err)
	}
	if len(none.Commands()) != 0 {
		t.Error("clang must not be probed")
	}
}

func TestParseEnv(t *testing.T) {
	env := ParseEnv([]byte("INCLUDE=C:\\VC\\include\r\nPath=C:\\bin;C:\\VC\\bin\r\n=C:=C:\\\r\nnoise\r\n"))
	if env["INCLUDE"] != `C:\VC\include` || env["Path"] != `C:\bin;C:\VC\bin` {
		t.Fatalf("ParseEnv = %v", env)
	}
	if len(env) != 2 {
		t.Fatalf("ParseEnv kept %d entries: %v", len(env), env)
	}
}

func TestVCVars(t *testing.T) {
	t.Setenv("ProgramFiles(x86)", `C:\PF`)
	r := &command.Recorder{Handle: func(c *command.Cmd) ([]byte, error) {
		if strings.HasSuffix(c.Name, "vswhere.exe") {
			return []byte("C:\\VS\\2017\r\n"), nil
		}
		return []byte("LIB=C:\\VS\\lib\r\n"), nil
	}}
	s := formula.Settings{
		OS: formula.Windows, Arch: formula.X86_64, BuildType: formula.Release,
		Compiler: formula.Compiler{Name: formula.VisualStudio, Version: "15", Runtime: formula.RuntimeMD},
	}
	env, err := VCVars(context.Background(), r, s)
	if err != nil {
		t.Fatal(err)
	}
	if env["LIB"] != `C:\VS\lib` {
		t.Fatalf("env = %v", env)
	}
	cmds := r.Commands()
	if len(cmds) != 2 {
		t.Fatalf("commands = %v", r.Names())
	}
	if !strings.Contains(strings.Join(cmds[0].Args, " "), "[15.0,16.0)") {
		t.Errorf("vswhere args = %v", cmds[0].Args)
	}
	call := strings.Join(cmds[1].Args, " ")
	if cmds[1].Name != "cmd" || !strings.Contains(call, "vcvarsall.bat") || !strings.Contains(call, " amd64 ") {
		t.Errorf("vcvarsall command = %s %s", cmds[1].Name, call)
	}
}

func TestVCVarsNotVisualStudio(t *testing.T) {
	r := &command.Recorder{}
	env, err := VCVars(context.Background(), r, formula.Settings{Compiler: formula.Compiler{Name: formula.GCC}})
	if env != nil || err != nil || len(r.Commands()) != 0 {
		t.Fatalf("VCVars = %v, %v", env, err)
	}
}

func TestVCVarsLegacy(t *testing.T) {
	t.Setenv("VS140COMNTOOLS", "")
	s := formula.Settings{
		Arch:     formula.X86,
		Compiler: formula.Compiler{Name: formula.VisualStudio, Version: "14", Runtime: formula.RuntimeMD},
	}
	if _, err := VCVars(context.Background(), &command.Recorder{}, s); err == nil {
		t.Fatal("expected error without VS140COMNTOOLS")
	}
}

func TestMachineWordSize(t *testing.T) {
	tests := map[string]int{
		"x86_64": 64, "aarch64": 64, "arm64": 64, "AMD64": 64, "ppc64le": 64, "s390x": 64,
		"i686": 32, "armv7l": 32, "x86": 32,
		"": 0, "sparc": 0,
	}
	for machine, want := range tests {
		if got := machineWordSize(machine); got != want {
			t.Errorf("machineWordSize(%q) = %d, want %d", machine, got, want)
		}
	}
	if n := HostWordSize(); n != 32 && n != 64 {
		t.Errorf("HostWordSize() = %d", n)
	}
}
