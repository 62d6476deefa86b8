// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vcs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goplus/boostpkg/internal/command"
)

// VCS defines the interface for version control operations.
type VCS interface {
	// Sync ensures dir holds a checkout of ref including all submodules.
	// If dir doesn't exist, clones the single branch or tag ref.
	// If dir exists, pulls updates in place.
	Sync(ctx context.Context, remote, ref, dir string) error

	// Tags returns all tags from the remote repository.
	Tags(ctx context.Context, remote string) ([]string, error)
}

// gitVCS implements VCS using git.
type gitVCS struct {
	git    string
	runner command.Runner
}

// GitOption configures gitVCS.
type GitOption func(*gitVCS)

// WithGitPath sets a custom git executable path.
func WithGitPath(path string) GitOption {
	return func(g *gitVCS) {
		g.git = path
	}
}

// WithRunner sets how git is executed.
func WithRunner(r command.Runner) GitOption {
	return func(g *gitVCS) {
		g.runner = r
	}
}

// NewGitVCS creates a new git VCS instance.
func NewGitVCS(opts ...GitOption) VCS {
	g := &gitVCS{git: "git", runner: command.Exec{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *gitVCS) Sync(ctx context.Context, remote, ref, dir string) error {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		slog.Info("updating sources", "dir", dir)
		if err := g.run(ctx, dir, "pull"); err != nil {
			return fmt.Errorf("pull: %w", err)
		}
		if err := g.run(ctx, dir, "submodule", "update", "--init", "--recursive"); err != nil {
			return fmt.Errorf("update submodules: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return err
	}
	slog.Info("cloning sources", "remote", remote, "ref", ref, "dir", dir)
	args := []string{"clone", "-b", ref, "--recursive", "--single-branch", remote, dir}
	if err := g.run(ctx, "", args...); err != nil {
		return fmt.Errorf("clone %s: %w", ref, err)
	}
	return nil
}

func (g *gitVCS) Tags(ctx context.Context, remote string) ([]string, error) {
	output, err := g.output(ctx, "", "ls-remote", "--tags", "--refs", remote)
	if err != nil {
		return nil, fmt.Errorf("list remote tags: %w", err)
	}
	return parseTags(output), nil
}

// parseTags parses git ls-remote --tags output.
func parseTags(output string) []string {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil
	}
	var tags []string
	for _, line := range strings.Split(output, "\n") {
		// format: <hash>\trefs/tags/<tag>
		_, ref, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if ok {
			tags = append(tags, strings.TrimPrefix(ref, "refs/tags/"))
		}
	}
	return tags
}

func (g *gitVCS) run(ctx context.Context, dir string, args ...string) error {
	_, err := g.output(ctx, dir, args...)
	return err
}

func (g *gitVCS) output(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := g.runner.Output(ctx, &command.Cmd{
		Name: g.git,
		Args: args,
		Dir:  dir,
		Env:  map[string]string{"GIT_TERMINAL_PROMPT": "0"},
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
