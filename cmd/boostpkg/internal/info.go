package internal

import (
	"encoding/json"
	"fmt"

	"github.com/goplus/boostpkg/internal/pkginfo"
	"github.com/spf13/cobra"
)

var infoPkgConfig bool

var infoCmd = &cobra.Command{
	Use:   "info <package-dir>",
	Short: "Print the descriptor of a package",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoPkgConfig, "pkg-config", false, "Print the pkg-config file instead")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	d, err := pkginfo.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load package: %w", err)
	}
	if infoPkgConfig {
		fmt.Fprint(cmd.OutOrStdout(), d.PkgConfig())
		return nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
