package internal

import (
	"fmt"

	"github.com/goplus/boostpkg/internal/build"
	"github.com/goplus/boostpkg/internal/vcs"
	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the Boost releases",
	Long:  `Versions lists the release tags of the Boost superproject, oldest first.`,
	Args:  cobra.NoArgs,
	RunE:  runVersions,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
	tags, err := vcs.NewGitVCS().Tags(cmd.Context(), build.Remote)
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}
	for _, v := range vcs.Releases(tags) {
		fmt.Fprintln(cmd.OutOrStdout(), v)
	}
	return nil
}
