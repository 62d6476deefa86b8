package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Workspace directory layout:
//
//	workspaceDir/
//	  <escaped>/                    # module-level dir (cacheDir)
//	    .cache.json                 # build cache: maps "version-packageID" → buildEntry
//	  <escaped>@<version>/          # version dir
//	    source/                     # boost/, bzip2-x.y.z/, zlib-x.y.z/
//	    build/<packageID>/          # b2 stage and intermediate files
//	    package/<packageID>/        # include/, lib/, bin/, boostpkg.json
const cacheFile = ".cache.json"

// buildEntry contains metadata about a single successful build.
type buildEntry struct {
	Config    string    `json:"config"`
	BuildTime time.Time `json:"build_time"`
}

// buildCache maps "version-packageID" keys to their build entries.
type buildCache struct {
	Cache map[string]*buildEntry `json:"cache"`
}

func cacheKey(version, packageID string) string {
	return version + "-" + packageID
}

func (c *buildCache) get(version, packageID string) (*buildEntry, bool) {
	entry, ok := c.Cache[cacheKey(version, packageID)]
	return entry, ok
}

func (c *buildCache) set(version, packageID string, entry *buildEntry) {
	if c.Cache == nil {
		c.Cache = make(map[string]*buildEntry)
	}
	c.Cache[cacheKey(version, packageID)] = entry
}

// loadCache reads the cache file of the module. A missing file is an empty
// cache.
func (b *Builder) loadCache() (*buildCache, error) {
	dir, err := b.cacheDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, cacheFile))
	if os.IsNotExist(err) {
		return &buildCache{}, nil
	}
	if err != nil {
		return nil, err
	}
	var cache buildCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}
	return &cache, nil
}

// saveCache writes the cache file of the module.
func (b *Builder) saveCache(cache *buildCache) error {
	dir, err := b.cacheDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, cacheFile), data, 0o644)
}

// cacheDir returns workspaceDir/<escapedPath>.
func (b *Builder) cacheDir() (string, error) {
	escaped, err := b.module.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(b.workspaceDir, escaped), nil
}

// versionDir returns workspaceDir/<escapedPath>@<version>.
func (b *Builder) versionDir() (string, error) {
	escaped, err := b.module.VersionDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(b.workspaceDir, escaped), nil
}
