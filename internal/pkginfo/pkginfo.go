// Package pkginfo describes a built Boost package to its consumers.
package pkginfo

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/goplus/boostpkg/formula"
	"github.com/goplus/boostpkg/internal/resolve"
	"github.com/goplus/boostpkg/internal/synth"
	"github.com/goplus/boostpkg/pkgs/mod/module"
)

// File is the descriptor file name inside a package folder.
const File = "boostpkg.json"

// ErrNoArtifacts is returned in strict mode when a compiled package has no
// libraries.
var ErrNoArtifacts = errors.New("no library artifacts found")

// Descriptor tells consumers how to compile and link against a package.
// Directories are relative to the package folder.
type Descriptor struct {
	Module      string   `json:"module"`
	Version     string   `json:"version"`
	PackageID   string   `json:"package_id"`
	Config      string   `json:"config"`
	HeaderOnly  bool     `json:"header_only"`
	Shared      bool     `json:"shared"`
	Libs        []string `json:"libs"`
	IncludeDirs []string `json:"include_dirs"`
	LibDirs     []string `json:"lib_dirs"`
	BinDirs     []string `json:"bin_dirs"`
	CxxFlags    []string `json:"cxxflags,omitempty"`
	LinkFlags   []string `json:"linkflags,omitempty"`
	Defines     []string `json:"defines,omitempty"`
}

// Options controls Describe.
type Options struct {
	Module module.Version
	// Strict turns a compiled package without libraries into an error.
	Strict bool
}

// HeaderOnlyConfig stands for every header-only configuration, as their
// packages do not depend on the settings.
const HeaderOnlyConfig = "header_only"

// ConfigKey returns the configuration key a package of r is identified by.
func ConfigKey(r *resolve.Resolved) string {
	if r.HeaderOnly() {
		return HeaderOnlyConfig
	}
	return r.Key()
}

// PackageID identifies the binary package built for r. Header-only
// packages share one ID whatever the settings.
func PackageID(r *resolve.Resolved) string {
	sum := blake3.Sum256([]byte(ConfigKey(r)))
	return hex.EncodeToString(sum[:16])
}

// Describe builds the descriptor of the package staged in pkgDir for r.
func Describe(r *resolve.Resolved, pkgDir string, opts Options) (*Descriptor, error) {
	d := &Descriptor{
		Module:      opts.Module.ID,
		Version:     opts.Module.Version,
		PackageID:   PackageID(r),
		Config:      ConfigKey(r),
		HeaderOnly:  r.HeaderOnly(),
		Shared:      !r.HeaderOnly() && r.Options.IsShared(),
		IncludeDirs: []string{"include"},
	}
	if d.HeaderOnly {
		d.Defines = consumerDefines(r)
		return d, nil
	}

	libs, err := Collect(pkgDir)
	if err != nil {
		return nil, fmt.Errorf("collect libraries: %w", err)
	}
	if r.Options.Without.Excluded(formula.Test) {
		libs = slices.DeleteFunc(libs, func(lib string) bool {
			return strings.Contains(lib, "unit_test")
		})
	}
	slog.Info("LIBRARIES: " + strings.Join(libs, ", "))
	if len(libs) == 0 {
		if opts.Strict {
			return nil, fmt.Errorf("%s: %w", pkgDir, ErrNoArtifacts)
		}
		slog.Warn("no library artifacts found", "dir", pkgDir)
	}

	f := synth.Flags(r)
	d.Libs = libs
	d.LibDirs = []string{"lib"}
	d.BinDirs = []string{"bin"}
	d.CxxFlags = f.CxxFlags
	d.LinkFlags = f.LinkFlags
	d.Defines = append(slices.Clone(f.Defines), consumerDefines(r)...)
	return d, nil
}

// consumerDefines selects how consumers link Boost. Header-only packages
// count as static.
func consumerDefines(r *resolve.Resolved) []string {
	if r.HeaderOnly() {
		return []string{"BOOST_USE_STATIC_LIBS"}
	}
	var defs []string
	if r.Options.IsShared() {
		defs = append(defs, "BOOST_ALL_DYN_LINK")
	} else {
		defs = append(defs, "BOOST_USE_STATIC_LIBS")
		if !r.Options.Without.Excluded(formula.Python) {
			defs = append(defs, "BOOST_PYTHON_STATIC_LIB")
		}
	}
	// No auto-linking, the libraries are listed explicitly.
	if r.Settings.Compiler.Name == formula.VisualStudio {
		defs = append(defs, "BOOST_ALL_NO_LIB")
	}
	return defs
}

// Save writes d to pkgDir/boostpkg.json.
func (d *Descriptor) Save(pkgDir string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(pkgDir, File), append(data, '\n'), 0o644)
}

// Load reads the descriptor of the package in pkgDir.
func Load(pkgDir string) (*Descriptor, error) {
	data, err := os.ReadFile(filepath.Join(pkgDir, File))
	if err != nil {
		return nil, err
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Join(pkgDir, File), err)
	}
	return &d, nil
}
