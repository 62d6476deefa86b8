package buildsys

import "context"

// BuildSystem captures shared capabilities of build helpers (b2, CMake).
// It keeps the common lifecycle and env setup; implementations add their own extras.
type BuildSystem interface {
	// Basic paths.
	Source(dir string)
	InstallDir(dir string)

	// Environment helper.
	Env(key, val string)

	// Lifecycle.
	Configure(ctx context.Context, args ...string) error
	Build(ctx context.Context, args ...string) error
	Install(ctx context.Context, args ...string) error

	// Where artifacts land.
	OutputDir() string
}
