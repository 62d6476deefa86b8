package internal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/goplus/boostpkg/internal/build"
	"github.com/goplus/boostpkg/internal/env"
	"github.com/goplus/boostpkg/internal/logging"
	"github.com/goplus/boostpkg/pkgs/mod/module"
	"github.com/spf13/cobra"
)

var (
	profilePath  string
	settingArgs  []string
	optionArgs   []string
	workspaceDir string
	logLevel     string
	jobs         int
	strict       bool
	boostVersion string
)

var rootCmd = &cobra.Command{
	Use:   "boostpkg",
	Short: "boostpkg builds and packages Boost",
	Long: `boostpkg resolves a build configuration, builds Boost with b2 and
stages the result into a package described by boostpkg.json.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Setup(logLevel)
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&profilePath, "profile", "", "Configuration profile (.yaml, .yml, .json or .jsonc)")
	f.StringArrayVarP(&settingArgs, "setting", "s", nil, "Override a setting, e.g. -s compiler.version=7")
	f.StringArrayVarP(&optionArgs, "option", "o", nil, "Override an option, e.g. -o shared=True")
	f.StringVar(&workspaceDir, "workspace", "", "Workspace directory (default $"+env.WorkspaceEnv+" or the user cache dir)")
	f.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default $"+logging.LevelEnv+")")
	f.IntVarP(&jobs, "jobs", "j", 0, "Parallel b2 jobs, 0 uses every CPU")
	f.BoolVar(&strict, "strict", false, "Fail when a compiled package has no libraries")
	f.StringVar(&boostVersion, "boost-version", build.Boost.Version, "Boost release to package")
}

// Execute runs the root command. Interrupts cancel running tools.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// newBuilder creates the pipeline for the selected workspace and release.
func newBuilder() (*build.Builder, error) {
	dir, err := filepath.Abs(workspaceDir)
	if workspaceDir == "" {
		dir, err = env.WorkDir()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace dir: %w", err)
	}
	mod := module.Version{ID: build.Boost.ID, Version: boostVersion}
	return build.NewBuilder(dir,
		build.WithModule(mod),
		build.WithJobs(jobs),
		build.WithStrict(strict),
	), nil
}
