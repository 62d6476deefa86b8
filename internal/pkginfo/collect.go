package pkginfo

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goplus/boostpkg/pkgs/buildsys/b2"
)

// Collect returns the sorted link names of the libraries staged in the lib
// and bin folders of pkgDir. Missing folders count as empty.
func Collect(pkgDir string) ([]string, error) {
	var libs []string
	for _, sub := range []struct {
		dir      string
		patterns []string
	}{
		{"lib", b2.LibPatterns},
		{"bin", b2.BinPatterns},
	} {
		entries, err := os.ReadDir(filepath.Join(pkgDir, sub.dir))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !b2.Match(sub.patterns, e.Name()) {
				continue
			}
			if name := LinkName(e.Name()); name != "" {
				libs = append(libs, name)
			}
		}
	}
	slices.Sort(libs)
	return slices.Compact(libs), nil
}

// LinkName returns the name a linker resolves file by: the extension and
// any version suffix are removed, as is the "lib" prefix except for MSVC
// libraries.
//
//	libboost_system.so.1.66.0    -> boost_system
//	libboost_system.dll.a        -> boost_system
//	boost_system-vc141-mt-1_66.lib -> boost_system-vc141-mt-1_66
func LinkName(file string) string {
	name := filepath.Base(file)
	if base, ext, ok := cutExt(name); ok {
		if ext != ".lib" {
			base = strings.TrimPrefix(base, "lib")
		}
		return base
	}
	return ""
}

func cutExt(name string) (base, ext string, ok bool) {
	if i := strings.Index(name, ".so."); i > 0 {
		return name[:i], ".so", true
	}
	if i := strings.Index(name, ".dylib"); i > 0 {
		return trimVersion(name[:i]), ".dylib", true
	}
	for _, ext := range []string{".dll.a", ".a", ".so", ".lib", ".dll"} {
		if base, ok := strings.CutSuffix(name, ext); ok && base != "" {
			return base, ext, true
		}
	}
	return "", "", false
}

// trimVersion strips a trailing ".1.66.0" from a darwin library name.
func trimVersion(name string) string {
	for {
		i := strings.LastIndexByte(name, '.')
		if i <= 0 || strings.Trim(name[i+1:], "0123456789") != "" || i == len(name)-1 {
			return name
		}
		name = name[:i]
	}
}
