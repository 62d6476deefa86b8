package testpkg

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goplus/boostpkg/internal/command"
	"github.com/goplus/boostpkg/internal/pkginfo"
)

func TestDefinitions(t *testing.T) {
	pkg := filepath.Join("pkg")
	tests := []struct {
		name string
		d    pkginfo.Descriptor
		want map[string]string
		not  []string
	}{
		{
			name: "header only",
			d:    pkginfo.Descriptor{HeaderOnly: true, IncludeDirs: []string{"include"}, Defines: []string{"BOOST_USE_STATIC_LIBS"}},
			want: map[string]string{
				"HEADER_ONLY":       "TRUE",
				"BOOST_INCLUDE_DIR": filepath.Join(pkg, "include"),
				"BOOST_DEFINES":     "BOOST_USE_STATIC_LIBS",
			},
			not: []string{"WITH_REGEX", "WITH_PYTHON"},
		},
		{
			name: "regex and python",
			d: pkginfo.Descriptor{
				Libs:     []string{"boost_python", "boost_regex", "boost_system"},
				LibDirs:  []string{"lib"},
				CxxFlags: []string{"-std=c++17", "-fPIC"},
				Defines:  []string{"_GLIBCXX_USE_CXX11_ABI=1", "BOOST_ALL_DYN_LINK"},
			},
			want: map[string]string{
				"WITH_REGEX":       "TRUE",
				"BOOST_REGEX_LIB":  "boost_regex",
				"WITH_PYTHON":      "TRUE",
				"BOOST_PYTHON_LIB": "boost_python",
				"BOOST_LIB_DIR":    filepath.Join(pkg, "lib"),
				"BOOST_CXXFLAGS":   "-std=c++17 -fPIC",
				"BOOST_DEFINES":    "_GLIBCXX_USE_CXX11_ABI=1;BOOST_ALL_DYN_LINK",
			},
			not: []string{"HEADER_ONLY"},
		},
		{
			name: "without regex",
			d:    pkginfo.Descriptor{Libs: []string{"boost_system"}},
			not:  []string{"WITH_REGEX", "BOOST_REGEX_LIB", "WITH_PYTHON"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Definitions(&tt.d, pkg)
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
			for _, k := range tt.not {
				if _, ok := got[k]; ok {
					t.Errorf("%s is set", k)
				}
			}
		})
	}
}

func TestWriteProject(t *testing.T) {
	dir := t.TempDir()
	if err := WriteProject(dir); err != nil {
		t.Fatal(err)
	}
	for _, file := range []string{"CMakeLists.txt", "lambda.cpp", "regex.cpp", "python.cpp", DataFile} {
		if _, err := os.Stat(filepath.Join(dir, file)); err != nil {
			t.Errorf("missing %s: %v", file, err)
		}
	}
}

func exe(name string) string {
	if hostOS == "windows" {
		return name + ".exe"
	}
	return name
}

func TestRun(t *testing.T) {
	project := t.TempDir()
	if err := WriteProject(project); err != nil {
		t.Fatal(err)
	}
	build := t.TempDir()
	pkg := t.TempDir()
	d := &pkginfo.Descriptor{
		Shared:      true,
		Libs:        []string{"boost_regex"},
		IncludeDirs: []string{"include"},
		LibDirs:     []string{"lib"},
		BinDirs:     []string{"bin"},
	}

	runner := &command.Recorder{Handle: func(c *command.Cmd) ([]byte, error) {
		if c.Name == "cmake" && c.Args[0] == "--build" {
			for _, prog := range []string{"lambda", "regex_exe"} {
				file := filepath.Join(build, "bin", exe(prog))
				if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
					return nil, err
				}
				if err := os.WriteFile(file, nil, 0o755); err != nil {
					return nil, err
				}
			}
			return nil, nil
		}
		if c.Stdin != nil {
			data, err := io.ReadAll(c.Stdin)
			if err != nil || !strings.Contains(string(data), "Subject:") {
				t.Errorf("%s stdin = %q, %v", c.Name, data, err)
			}
		}
		return nil, nil
	}}

	err := Run(context.Background(), runner, d, Options{
		ProjectDir: project,
		BuildDir:   build,
		PackageDir: pkg,
		Stdout:     io.Discard,
		Stderr:     io.Discard,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	cmds := runner.Commands()
	if len(cmds) != 4 {
		t.Fatalf("commands = %v", runner.Names())
	}
	configure := cmds[0]
	if !slices.Contains(configure.Args, "-DWITH_REGEX:STRING=TRUE") ||
		!slices.Contains(configure.Args, "-DBOOST_REGEX_LIB:STRING=boost_regex") ||
		!slices.Contains(configure.Args, "-DCMAKE_BUILD_TYPE:STRING=Release") {
		t.Errorf("configure args = %q", configure.Args)
	}
	for i, prog := range []string{"lambda", "regex_exe"} {
		c := cmds[2+i]
		if filepath.Base(c.Name) != exe(prog) {
			t.Errorf("command %d = %s, want %s", 2+i, c.Name, prog)
		}
		if len(c.Env) == 0 {
			t.Errorf("%s: shared package run without library path", prog)
		}
	}
}

func TestRunMissingProgram(t *testing.T) {
	project := t.TempDir()
	if err := WriteProject(project); err != nil {
		t.Fatal(err)
	}
	err := Run(context.Background(), &command.Recorder{}, &pkginfo.Descriptor{HeaderOnly: true}, Options{
		ProjectDir: project,
		BuildDir:   t.TempDir(),
		PackageDir: t.TempDir(),
		Stdout:     io.Discard,
		Stderr:     io.Discard,
	})
	if err == nil || !strings.Contains(err.Error(), "lambda") {
		t.Fatalf("Run = %v, want missing lambda", err)
	}
}

func setHostOS(t *testing.T, goos string) {
	saved := hostOS
	hostOS = goos
	t.Cleanup(func() { hostOS = saved })
}

// pythonTools fakes cmake building lambda and the extension module, and an
// interpreter installed under prefix.
func pythonTools(build, prefix, module string) *command.Recorder {
	return &command.Recorder{Handle: func(c *command.Cmd) ([]byte, error) {
		switch {
		case c.Name == "cmake" && c.Args[0] == "--build":
			bin := filepath.Join(build, "bin")
			if err := os.MkdirAll(bin, 0o755); err != nil {
				return nil, err
			}
			for _, file := range []string{exe("lambda"), module} {
				if err := os.WriteFile(filepath.Join(bin, file), nil, 0o755); err != nil {
					return nil, err
				}
			}
		case c.Name == "python" && strings.Contains(c.Args[1], "sys.base_prefix"):
			return []byte(prefix + "\r\n311\r\n"), nil
		}
		return nil, nil
	}}
}

func pythonPackage() *pkginfo.Descriptor {
	return &pkginfo.Descriptor{
		Libs:        []string{"boost_python"},
		IncludeDirs: []string{"include"},
		LibDirs:     []string{"lib"},
	}
}

func TestRunImportsPythonModule(t *testing.T) {
	setHostOS(t, "linux")
	project := t.TempDir()
	if err := WriteProject(project); err != nil {
		t.Fatal(err)
	}
	build := t.TempDir()
	runner := pythonTools(build, "", "hello_ext.so")

	err := Run(context.Background(), runner, pythonPackage(), Options{
		ProjectDir: project,
		BuildDir:   build,
		PackageDir: t.TempDir(),
		Stdout:     io.Discard,
		Stderr:     io.Discard,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	cmds := runner.Commands()
	last := cmds[len(cmds)-1]
	if last.Name != "python" || last.Dir != filepath.Join(build, "bin") {
		t.Fatalf("last command = %s in %s, want python in bin", last.String(), last.Dir)
	}
	if want := "import hello_ext; print(hello_ext.greet())"; !slices.Equal(last.Args, []string{"-c", want}) {
		t.Errorf("python args = %q", last.Args)
	}
	if slices.ContainsFunc(cmds[0].Args, func(arg string) bool { return strings.HasPrefix(arg, "-DPYTHON_INCLUDE") }) {
		t.Errorf("PYTHON_INCLUDE defined outside Windows: %q", cmds[0].Args)
	}
}

func TestRunPythonWindows(t *testing.T) {
	setHostOS(t, "windows")
	project := t.TempDir()
	if err := WriteProject(project); err != nil {
		t.Fatal(err)
	}
	build := t.TempDir()
	prefix := filepath.Join("C:", "Program Files", "Python311")
	runner := pythonTools(build, prefix, "hello_ext.pyd")

	err := Run(context.Background(), runner, pythonPackage(), Options{
		ProjectDir: project,
		BuildDir:   build,
		PackageDir: t.TempDir(),
		Stdout:     io.Discard,
		Stderr:     io.Discard,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var configure command.Cmd
	for _, c := range runner.Commands() {
		if c.Name == "cmake" && c.Args[0] == "-S" {
			configure = c
		}
	}
	for _, want := range []string{
		"-DPYTHON_INCLUDE:STRING=" + filepath.Join(prefix, "include"),
		"-DPYTHON_LIB:STRING=" + filepath.Join(prefix, "libs", "python311.lib"),
		"-DWITH_PYTHON:STRING=TRUE",
		"-DBOOST_PYTHON_LIB:STRING=boost_python",
	} {
		if !slices.Contains(configure.Args, want) {
			t.Errorf("configure args missing %q: %q", want, configure.Args)
		}
	}
}

func TestRunMissingPythonModule(t *testing.T) {
	setHostOS(t, "linux")
	project := t.TempDir()
	if err := WriteProject(project); err != nil {
		t.Fatal(err)
	}
	build := t.TempDir()
	err := Run(context.Background(), pythonTools(build, "", "unrelated.so"), pythonPackage(), Options{
		ProjectDir: project,
		BuildDir:   build,
		PackageDir: t.TempDir(),
		Stdout:     io.Discard,
		Stderr:     io.Discard,
	})
	if err == nil || !strings.Contains(err.Error(), PythonModule) {
		t.Fatalf("Run = %v, want missing %s", err, PythonModule)
	}
}

func TestPythonPathsBadOutput(t *testing.T) {
	runner := &command.Recorder{Handle: func(c *command.Cmd) ([]byte, error) {
		return []byte("3.11\n"), nil
	}}
	if _, _, err := PythonPaths(context.Background(), runner, "python"); err == nil {
		t.Fatal("PythonPaths accepted a single line")
	}
}
