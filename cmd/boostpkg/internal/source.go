package internal

import (
	"fmt"

	"github.com/goplus/boostpkg/internal/command"
	"github.com/spf13/cobra"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Fetch the Boost sources",
	Long: `Source clones or updates the Boost superproject in the workspace and
downloads the bzip2 and zlib sources Boost.Iostreams is built with.`,
	Args: cobra.NoArgs,
	RunE: runSource,
}

func init() {
	rootCmd.AddCommand(sourceCmd)
}

func runSource(cmd *cobra.Command, args []string) error {
	r, err := resolveConfig(cmd.Context(), command.Exec{})
	if err != nil {
		return err
	}
	builder, err := newBuilder()
	if err != nil {
		return err
	}
	dir, err := builder.Source(cmd.Context(), r)
	if err != nil {
		return fmt.Errorf("failed to fetch sources: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), dir)
	return nil
}
