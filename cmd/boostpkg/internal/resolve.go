package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goplus/boostpkg/internal/command"
	"github.com/goplus/boostpkg/internal/pkginfo"
	"github.com/goplus/boostpkg/internal/resolve"
	"github.com/goplus/boostpkg/internal/synth"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var resolveFormat string

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the resolved configuration",
	Long: `Resolve applies the platform override rules to the configuration and
prints the result with the b2 arguments and compiler flags it implies.`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "yaml", "Output format: yaml or json")
	rootCmd.AddCommand(resolveCmd)
}

type resolveReport struct {
	PackageID  string            `yaml:"package_id" json:"package_id"`
	HeaderOnly bool              `yaml:"header_only" json:"header_only"`
	Settings   map[string]string `yaml:"settings" json:"settings"`
	Options    map[string]string `yaml:"options" json:"options"`
	Overrides  []string          `yaml:"overrides,omitempty" json:"overrides,omitempty"`
	Warnings   []string          `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	Args       []string          `yaml:"args,omitempty" json:"args,omitempty"`
	Flags      synth.FlagSet     `yaml:"flags" json:"flags"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	r, err := resolveConfig(cmd.Context(), command.Exec{})
	if err != nil {
		return err
	}
	builder, err := newBuilder()
	if err != nil {
		return err
	}
	res, err := builder.Dirs(r)
	if err != nil {
		return err
	}
	report := newReport(r, synth.Dirs{Source: res.SourceDir, Build: res.BuildDir})
	return writeReport(cmd.OutOrStdout(), report, resolveFormat)
}

func newReport(r *resolve.Resolved, dirs synth.Dirs) *resolveReport {
	report := &resolveReport{
		PackageID:  pkginfo.PackageID(r),
		HeaderOnly: r.HeaderOnly(),
		Settings:   map[string]string{},
		Options:    map[string]string{},
		Overrides:  r.Overrides,
		Warnings:   r.Warnings,
		Args:       synth.Args(r, dirs, jobs),
		Flags:      synth.Flags(r),
	}
	m := r.Matrix()
	for key, values := range m.Require {
		_, value, _ := strings.Cut(values[0], "=")
		report.Settings[key] = value
	}
	for _, kv := range r.Options.Values() {
		report.Options[kv[0]] = kv[1]
	}
	return report
}

func writeReport(w io.Writer, report any, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return fmt.Errorf("unknown format %q, want yaml or json", format)
}
