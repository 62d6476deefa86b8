package env

import (
	"os"
	"path/filepath"
)

// WorkspaceEnv overrides the default workspace directory.
const WorkspaceEnv = "BOOSTPKG_WORKSPACE"

// WorkDir returns the workspace holding sources, builds and packages:
// $BOOSTPKG_WORKSPACE if set, otherwise <user cache dir>/.boostpkg.
// The directory is created if missing.
func WorkDir() (string, error) {
	dir := os.Getenv(WorkspaceEnv)
	if dir == "" {
		userCacheDir, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(userCacheDir, ".boostpkg")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Abs(dir)
}
