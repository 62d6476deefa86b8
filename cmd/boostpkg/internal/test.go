package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goplus/boostpkg/internal/command"
	"github.com/goplus/boostpkg/internal/pkginfo"
	"github.com/goplus/boostpkg/internal/testpkg"
	"github.com/spf13/cobra"
)

var (
	testPackageDir string
	testPython     string
)

var testCmd = &cobra.Command{
	Use:   "test [project-dir]",
	Short: "Build a consumer project against a package",
	Long: `Test configures and builds a CMake project against a package, then runs
the programs it produced. Without project-dir the bundled project is used.
Without --package the package of the current configuration is created first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTest,
}

func init() {
	testCmd.Flags().StringVar(&testPackageDir, "package", "", "Package directory to test")
	testCmd.Flags().StringVar(&testPython, "python", "python", "Python interpreter importing the extension module")
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r, err := resolveConfig(ctx, command.Exec{})
	if err != nil {
		return err
	}

	pkgDir := testPackageDir
	var d *pkginfo.Descriptor
	if pkgDir == "" {
		builder, err := newBuilder()
		if err != nil {
			return err
		}
		res, err := builder.Create(ctx, r)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", builder.Module(), err)
		}
		pkgDir, d = res.PackageDir, res.Descriptor
	} else if d, err = pkginfo.Load(pkgDir); err != nil {
		return fmt.Errorf("failed to load package: %w", err)
	}
	if pkgDir, err = filepath.Abs(pkgDir); err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "boostpkg-test-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	projectDir := filepath.Join(tmpDir, "project")
	if len(args) > 0 {
		projectDir = args[0]
	} else if err := testpkg.WriteProject(projectDir); err != nil {
		return err
	}

	return testpkg.Run(ctx, command.Exec{}, d, testpkg.Options{
		ProjectDir: projectDir,
		BuildDir:   filepath.Join(tmpDir, "build"),
		PackageDir: pkgDir,
		BuildType:  string(r.Settings.BuildType),
		Python:     testPython,
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
	})
}
