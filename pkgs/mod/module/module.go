// Package module identifies a package by its upstream repository and
// release version.
package module

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/mod/module"
)

// Version is a specific release of a module.
type Version struct {
	ID      string // upstream path, e.g. "github.com/boostorg/boost"
	Version string // release version, e.g. "1.66.0"
}

// String returns "id@version".
func (v Version) String() string {
	if v.Version == "" {
		return v.ID
	}
	return v.ID + "@" + v.Version
}

// Parse parses "id@version". The version part is optional.
func Parse(s string) (Version, error) {
	id, version, _ := strings.Cut(s, "@")
	if id == "" {
		return Version{}, fmt.Errorf("invalid module %q: empty path", s)
	}
	if err := module.CheckImportPath(id); err != nil {
		return Version{}, fmt.Errorf("invalid module %q: %w", s, err)
	}
	return Version{ID: id, Version: version}, nil
}

// Dir returns the escaped relative directory of the module, safe to use on
// case-insensitive file systems.
func (v Version) Dir() (string, error) {
	path, err := module.EscapePath(v.ID)
	if err != nil {
		return "", err
	}
	return filepath.FromSlash(path), nil
}

// VersionDir returns Dir followed by "@<escaped version>".
func (v Version) VersionDir() (string, error) {
	dir, err := v.Dir()
	if err != nil {
		return "", err
	}
	version, err := module.EscapeVersion(v.Version)
	if err != nil {
		return "", err
	}
	return dir + "@" + version, nil
}
