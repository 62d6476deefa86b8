package pkginfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PkgConfigFile is where WritePkgConfig puts the pkg-config file.
var PkgConfigFile = filepath.Join("lib", "pkgconfig", "boost.pc")

// PkgConfig renders d as a relocatable pkg-config file.
func (d *Descriptor) PkgConfig() string {
	var b strings.Builder
	b.WriteString("prefix=${pcfiledir}/../..\n")
	b.WriteString("libdir=${prefix}/lib\n")
	b.WriteString("includedir=${prefix}/include\n\n")
	b.WriteString("Name: boost\n")
	b.WriteString("Description: Boost C++ Libraries\n")
	fmt.Fprintf(&b, "Version: %s\n", d.Version)

	libs := []string{}
	if len(d.Libs) > 0 {
		libs = append(libs, "-L${libdir}")
		for _, lib := range d.Libs {
			libs = append(libs, "-l"+lib)
		}
	}
	libs = append(libs, d.LinkFlags...)
	if len(libs) > 0 {
		fmt.Fprintf(&b, "Libs: %s\n", strings.Join(libs, " "))
	}

	cflags := []string{"-I${includedir}"}
	cflags = append(cflags, d.CxxFlags...)
	for _, def := range d.Defines {
		cflags = append(cflags, "-D"+def)
	}
	fmt.Fprintf(&b, "Cflags: %s\n", strings.Join(cflags, " "))
	return b.String()
}

// WritePkgConfig writes the pkg-config file into the package folder.
func (d *Descriptor) WritePkgConfig(pkgDir string) error {
	file := filepath.Join(pkgDir, PkgConfigFile)
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	return os.WriteFile(file, []byte(d.PkgConfig()), 0o644)
}
