// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vcs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goplus/boostpkg/internal/command"
)

func TestGitVCS_SyncClone(t *testing.T) {
	r := &command.Recorder{}
	vcs := NewGitVCS(WithRunner(r), WithGitPath("/usr/bin/git"))
	dir := filepath.Join(t.TempDir(), "src", "boost")

	if err := vcs.Sync(context.Background(), "https://github.com/boostorg/boost.git", "boost-1.66.0", dir); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	cmds := r.Commands()
	if len(cmds) != 1 {
		t.Fatalf("expected one command, got %v", r.Names())
	}
	c := cmds[0]
	want := []string{"clone", "-b", "boost-1.66.0", "--recursive", "--single-branch", "https://github.com/boostorg/boost.git", dir}
	if c.Name != "/usr/bin/git" || !slices.Equal(c.Args, want) {
		t.Errorf("command = %s %v, want %v", c.Name, c.Args, want)
	}
	if c.Env["GIT_TERMINAL_PROMPT"] != "0" {
		t.Error("git prompts must be disabled")
	}
	if _, err := os.Stat(filepath.Dir(dir)); err != nil {
		t.Errorf("parent dir not created: %v", err)
	}
}

func TestGitVCS_SyncPull(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	r := &command.Recorder{}
	if err := NewGitVCS(WithRunner(r)).Sync(context.Background(), "remote", "boost-1.66.0", dir); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	cmds := r.Commands()
	if len(cmds) != 2 {
		t.Fatalf("commands = %v", r.Names())
	}
	if cmds[0].Args[0] != "pull" || cmds[0].Dir != dir {
		t.Errorf("first command = %v in %q, want pull in %q", cmds[0].Args, cmds[0].Dir, dir)
	}
	if strings.Join(cmds[1].Args, " ") != "submodule update --init --recursive" {
		t.Errorf("second command = %v", cmds[1].Args)
	}
}

func TestGitVCS_SyncError(t *testing.T) {
	r := &command.Recorder{Handle: func(c *command.Cmd) ([]byte, error) {
		return nil, &command.Error{Name: c.Name, Args: c.Args, ExitCode: 128, Stderr: "fatal: Remote branch boost-0 not found"}
	}}
	err := NewGitVCS(WithRunner(r)).Sync(context.Background(), "remote", "boost-0", filepath.Join(t.TempDir(), "x"))
	var cerr *command.Error
	if !errors.As(err, &cerr) || cerr.ExitCode != 128 {
		t.Fatalf("Sync = %v, want *command.Error with exit code 128", err)
	}
}

func TestGitVCS_Tags(t *testing.T) {
	out := "aaa\trefs/tags/boost-1.65.1\nbbb\trefs/tags/boost-1.66.0\n\nbroken\n"
	r := &command.Recorder{Handle: func(c *command.Cmd) ([]byte, error) {
		return []byte(out), nil
	}}
	tags, err := NewGitVCS(WithRunner(r)).Tags(context.Background(), "remote")
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	if want := []string{"boost-1.65.1", "boost-1.66.0"}; !slices.Equal(tags, want) {
		t.Errorf("Tags = %v, want %v", tags, want)
	}
	if got := strings.Join(r.Commands()[0].Args, " "); got != "ls-remote --tags --refs remote" {
		t.Errorf("args = %q", got)
	}
}

func TestParseTagsEmpty(t *testing.T) {
	if tags := parseTags("  \n"); tags != nil {
		t.Errorf("parseTags = %v, want nil", tags)
	}
}

func TestReleases(t *testing.T) {
	tags := []string{
		"boost-1.66.0", "boost-1.9.0", "boost-1.66.0.beta1", "boost-1.65.1",
		"boost-1.10.0", "boost-1.66.0-rc1", "develop-snapshot", "boost-1.66",
	}
	got := Releases(tags)
	want := []string{"1.9.0", "1.10.0", "1.65.1", "1.66.0"}
	if !slices.Equal(got, want) {
		t.Fatalf("Releases = %v, want %v", got, want)
	}
	if ReleaseTag("1.66.0") != "boost-1.66.0" {
		t.Fatal("ReleaseTag mismatch")
	}
}
