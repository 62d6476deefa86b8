package internal

import (
	"fmt"

	"github.com/goplus/boostpkg/internal/command"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build Boost without packaging it",
	Long: `Build fetches the sources, bootstraps b2, generates the header tree
and builds the libraries of the configuration into the workspace.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	r, err := resolveConfig(cmd.Context(), command.Exec{})
	if err != nil {
		return err
	}
	builder, err := newBuilder()
	if err != nil {
		return err
	}
	res, err := builder.Build(cmd.Context(), r)
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", builder.Module(), err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.BuildDir)
	return nil
}
