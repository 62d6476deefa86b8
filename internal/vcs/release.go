// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vcs

import (
	"strings"

	"golang.org/x/mod/semver"

	"github.com/goplus/boostpkg/pkgs/gnu"
)

// TagPrefix prefixes every Boost release tag, as in "boost-1.66.0".
const TagPrefix = "boost-"

// ReleaseTag returns the git tag of a release version.
func ReleaseTag(version string) string {
	return TagPrefix + version
}

// Releases returns the release versions found in tags, oldest first.
// Betas, release candidates and other non release tags are skipped.
func Releases(tags []string) []string {
	var versions []string
	for _, tag := range tags {
		v, ok := strings.CutPrefix(tag, TagPrefix)
		if !ok {
			continue
		}
		sv := "v" + v
		if !semver.IsValid(sv) || semver.Prerelease(sv) != "" || semver.Canonical(sv) != sv {
			continue
		}
		versions = append(versions, v)
	}
	gnu.Sort(versions)
	return versions
}
