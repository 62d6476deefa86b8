package build

import (
	"github.com/goplus/boostpkg/internal/fetch"
	"github.com/goplus/boostpkg/internal/vcs"
	"github.com/goplus/boostpkg/pkgs/mod/module"
)

// Boost is the packaged release.
var Boost = module.Version{ID: "github.com/boostorg/boost", Version: "1.66.0"}

// Remote is the Boost superproject, cloned with its submodules.
const Remote = "https://github.com/boostorg/boost.git"

// Compression libraries Boost.Iostreams builds from source.
var (
	BZip2 = fetch.Archive{
		URL: "http://www.bzip.org/1.0.6/bzip2-1.0.6.tar.gz",
		MD5: "00b516f4704d4a7cb50a1d97e6e8e15b",
	}
	Zlib = fetch.Archive{
		URL:    "http://downloads.sourceforge.net/project/libpng/zlib/1.2.11/zlib-1.2.11.tar.gz",
		SHA256: "c3e5e9fdd5004dcb542feda5ee4f0ff0744628baf8ed2dd5d66f8ca1197cb1a1",
	}
)

// ref returns the git ref of a module version.
func ref(mod module.Version) string {
	return vcs.ReleaseTag(mod.Version)
}
