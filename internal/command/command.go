// Package command runs external tools with an explicit argument vector and
// reports failures as structured errors.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Cmd describes one external process.
type Cmd struct {
	Name string
	Args []string
	Dir  string
	// Env overrides entries of the current process environment.
	Env map[string]string

	Stdin io.Reader
	// Stdout and Stderr receive the process output in Run. Nil discards.
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs.
func (c *Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Error is returned when a process cannot be started or exits non-zero.
type Error struct {
	Name     string
	Args     []string
	Dir      string
	ExitCode int // -1 when the process never ran
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Name, strings.Join(e.Args, " "), e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\n" + s
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Runner executes commands. The build pipeline only talks to the outside
// world through a Runner.
type Runner interface {
	// Run executes c, streaming output to c.Stdout and c.Stderr.
	Run(ctx context.Context, c *Cmd) error
	// Output executes c and returns its standard output.
	Output(ctx context.Context, c *Cmd) ([]byte, error)
}

// Exec is the Runner backed by os/exec.
type Exec struct{}

var _ Runner = Exec{}

func (Exec) Run(ctx context.Context, c *Cmd) error {
	var stderr tailBuffer
	cmd := c.exec(ctx)
	cmd.Stdout = c.Stdout
	cmd.Stderr = &stderr
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(c.Stderr, &stderr)
	}
	return c.wrap(cmd.Run(), stderr.String())
}

func (Exec) Output(ctx context.Context, c *Cmd) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := c.exec(ctx)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, c.wrap(err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func (c *Cmd) exec(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	if len(c.Env) > 0 {
		cmd.Env = MergeEnv(os.Environ(), c.Env)
	}
	return cmd
}

func (c *Cmd) wrap(err error, stderr string) error {
	if err == nil {
		return nil
	}
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &Error{
		Name:     c.Name,
		Args:     c.Args,
		Dir:      c.Dir,
		ExitCode: code,
		Stderr:   stderr,
		Err:      err,
	}
}

// MergeEnv returns base with override applied, sorted by key.
func MergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base)+len(override))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}

// maxStderr bounds the stderr kept for error messages.
const maxStderr = 8 << 10

// tailBuffer keeps the last maxStderr bytes written to it.
type tailBuffer struct {
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if n := len(b.buf); n > maxStderr {
		b.buf = append(b.buf[:0], b.buf[n-maxStderr:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string { return string(b.buf) }
