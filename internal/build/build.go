// Package build runs the packaging pipeline: fetch the sources, bootstrap
// Boost.Build, build the libraries and stage them into a package.
package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/goplus/boostpkg/formula"
	"github.com/goplus/boostpkg/internal/command"
	"github.com/goplus/boostpkg/internal/fetch"
	"github.com/goplus/boostpkg/internal/pkginfo"
	"github.com/goplus/boostpkg/internal/resolve"
	"github.com/goplus/boostpkg/internal/synth"
	"github.com/goplus/boostpkg/internal/toolchain"
	"github.com/goplus/boostpkg/internal/vcs"
	"github.com/goplus/boostpkg/pkgs/buildsys/b2"
	"github.com/goplus/boostpkg/pkgs/mod/module"
)

// Downloader fetches and unpacks a source archive into a folder.
type Downloader interface {
	Get(ctx context.Context, a fetch.Archive, dir string) error
}

type Builder struct {
	module       module.Version
	remote       string
	workspaceDir string

	runner     command.Runner
	vcs        vcs.VCS
	downloader Downloader

	jobs   int
	strict bool
	stdout io.Writer
	stderr io.Writer
}

// Option configures a Builder.
type Option func(*Builder)

// WithRunner sets how external tools are executed.
func WithRunner(r command.Runner) Option {
	return func(b *Builder) { b.runner = r }
}

// WithVCS sets the source control client.
func WithVCS(v vcs.VCS) Option {
	return func(b *Builder) { b.vcs = v }
}

// WithDownloader sets how source archives are fetched.
func WithDownloader(d Downloader) Option {
	return func(b *Builder) { b.downloader = d }
}

// WithJobs sets the b2 parallelism, 0 uses every CPU.
func WithJobs(n int) Option {
	return func(b *Builder) { b.jobs = n }
}

// WithStrict fails packages without any library.
func WithStrict(strict bool) Option {
	return func(b *Builder) { b.strict = strict }
}

// WithOutput redirects the output of external tools.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(b *Builder) { b.stdout, b.stderr = stdout, stderr }
}

// WithModule overrides the packaged release.
func WithModule(mod module.Version) Option {
	return func(b *Builder) { b.module = mod }
}

// NewBuilder creates a Builder working in workspaceDir.
func NewBuilder(workspaceDir string, opts ...Option) *Builder {
	b := &Builder{
		module:       Boost,
		remote:       Remote,
		workspaceDir: workspaceDir,
		runner:       command.Exec{},
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.vcs == nil {
		b.vcs = vcs.NewGitVCS(vcs.WithRunner(b.runner))
	}
	if b.downloader == nil {
		b.downloader = fetch.New()
	}
	return b
}

// Module returns the packaged release.
func (b *Builder) Module() module.Version {
	return b.module
}

// Result locates the trees of one configuration.
type Result struct {
	SourceDir  string
	BuildDir   string
	PackageDir string

	Descriptor *pkginfo.Descriptor
	// Cached is set when the package was found in the workspace.
	Cached bool
}

// Dirs returns the trees used for r without creating them.
func (b *Builder) Dirs(r *resolve.Resolved) (*Result, error) {
	dir, err := b.versionDir()
	if err != nil {
		return nil, err
	}
	id := pkginfo.PackageID(r)
	return &Result{
		SourceDir:  filepath.Join(dir, "source"),
		BuildDir:   filepath.Join(dir, "build", id),
		PackageDir: filepath.Join(dir, "package", id),
	}, nil
}

// Source fetches the Boost tree and, unless Boost.Iostreams is excluded,
// the compression library sources. It returns the source folder.
func (b *Builder) Source(ctx context.Context, r *resolve.Resolved) (string, error) {
	res, err := b.Dirs(r)
	if err != nil {
		return "", err
	}
	if err := b.vcs.Sync(ctx, b.remote, ref(b.module), filepath.Join(res.SourceDir, "boost")); err != nil {
		return "", fmt.Errorf("fetch %s: %w", b.module, err)
	}
	if !r.Options.Without.Excluded(formula.Iostreams) {
		for _, a := range []fetch.Archive{BZip2, Zlib} {
			if err := b.downloader.Get(ctx, a, res.SourceDir); err != nil {
				return "", fmt.Errorf("fetch %s: %w", a.Filename(), err)
			}
		}
	}
	return res.SourceDir, nil
}

// Build fetches the sources, bootstraps b2, generates the header tree and,
// unless the package is header-only, builds the libraries.
func (b *Builder) Build(ctx context.Context, r *resolve.Resolved) (*Result, error) {
	res, err := b.Dirs(r)
	if err != nil {
		return nil, err
	}
	if !r.HeaderOnly() {
		if err := toolchain.CheckCompiler(ctx, b.runner, r.Settings.Compiler); err != nil {
			return nil, err
		}
	}
	if _, err := b.Source(ctx, r); err != nil {
		return nil, err
	}

	engine, err := b.engine(ctx, r, res)
	if err != nil {
		return nil, err
	}
	if err := engine.Configure(ctx, bootstrapArgs(r.Settings)...); err != nil {
		return nil, err
	}
	if err := engine.Headers(ctx); err != nil {
		return nil, err
	}
	if r.HeaderOnly() {
		slog.Warn("Header only package, skipping build")
		return res, nil
	}

	if err := os.MkdirAll(res.BuildDir, 0o755); err != nil {
		return nil, err
	}
	args := synth.Args(r, synth.Dirs{Source: res.SourceDir, Build: res.BuildDir}, b.jobs)
	if err := engine.Build(ctx, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// Package stages a finished build into the package folder and describes it.
func (b *Builder) Package(ctx context.Context, r *resolve.Resolved, res *Result) (*pkginfo.Descriptor, error) {
	if err := os.RemoveAll(res.PackageDir); err != nil {
		return nil, err
	}
	engine := b2.New(b.runner)
	engine.Source(filepath.Join(res.SourceDir, "boost"))
	engine.InstallDir(res.PackageDir)
	if !r.HeaderOnly() {
		engine.BuildDir(res.BuildDir)
	}
	if err := engine.Install(ctx); err != nil {
		return nil, err
	}

	d, err := pkginfo.Describe(r, res.PackageDir, pkginfo.Options{Module: b.module, Strict: b.strict})
	if err != nil {
		return nil, err
	}
	if err := d.Save(res.PackageDir); err != nil {
		return nil, err
	}
	if err := d.WritePkgConfig(res.PackageDir); err != nil {
		return nil, err
	}
	res.Descriptor = d
	return d, nil
}

// Create returns the package of r, building it unless the workspace
// already holds it.
func (b *Builder) Create(ctx context.Context, r *resolve.Resolved) (*Result, error) {
	res, err := b.Dirs(r)
	if err != nil {
		return nil, err
	}
	id := pkginfo.PackageID(r)
	cache, err := b.loadCache()
	if err != nil {
		return nil, fmt.Errorf("load build cache: %w", err)
	}
	if _, ok := cache.get(b.module.Version, id); ok {
		if d, err := pkginfo.Load(res.PackageDir); err == nil {
			slog.Info("package found in workspace", "package_id", id, "dir", res.PackageDir)
			res.Descriptor = d
			res.Cached = true
			return res, nil
		}
		slog.Warn("cached package is missing, rebuilding", "package_id", id)
	}

	res, err = b.Build(ctx, r)
	if err != nil {
		return nil, err
	}
	if _, err := b.Package(ctx, r, res); err != nil {
		return nil, err
	}

	cache.set(b.module.Version, id, &buildEntry{Config: pkginfo.ConfigKey(r), BuildTime: time.Now()})
	if err := b.saveCache(cache); err != nil {
		return nil, fmt.Errorf("save build cache: %w", err)
	}
	return res, nil
}

// engine prepares b2 for r, including the Visual Studio environment.
func (b *Builder) engine(ctx context.Context, r *resolve.Resolved, res *Result) (*b2.B2, error) {
	s := r.Settings
	engine := b2.New(b.runner)
	engine.Source(filepath.Join(res.SourceDir, "boost"))
	engine.BuildDir(res.BuildDir)
	engine.Windows = s.OS == formula.Windows
	engine.Output(b.stdout, b.stderr)
	if toolset, ok := synth.Toolset(s.Compiler); ok && s.Compiler.Name != formula.VisualStudio {
		engine.Toolset = toolset
	}
	env, err := toolchain.VCVars(ctx, b.runner, s)
	if err != nil {
		return nil, err
	}
	for k, v := range env {
		engine.Env(k, v)
	}
	return engine, nil
}

// bootstrapArgs selects the MinGW engine toolset on Windows.
func bootstrapArgs(s formula.Settings) []string {
	if s.OS == formula.Windows && s.Compiler.Name == formula.GCC {
		return []string{"gcc"}
	}
	return nil
}
