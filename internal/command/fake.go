package command

import (
	"context"
	"sync"
)

// Recorder is a Runner that records commands instead of running them.
// Handle, when set, decides the outcome of each command; it may also
// create files the real tool would have produced.
type Recorder struct {
	Handle func(c *Cmd) ([]byte, error)

	mu   sync.Mutex
	cmds []Cmd
}

var _ Runner = (*Recorder)(nil)

func (r *Recorder) Run(ctx context.Context, c *Cmd) error {
	out, err := r.do(c)
	if err == nil && c.Stdout != nil && len(out) > 0 {
		_, err = c.Stdout.Write(out)
	}
	return err
}

func (r *Recorder) Output(ctx context.Context, c *Cmd) ([]byte, error) {
	return r.do(c)
}

func (r *Recorder) do(c *Cmd) ([]byte, error) {
	r.mu.Lock()
	r.cmds = append(r.cmds, *c)
	r.mu.Unlock()
	if r.Handle == nil {
		return nil, nil
	}
	return r.Handle(c)
}

// Commands returns the commands seen so far.
func (r *Recorder) Commands() []Cmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Cmd(nil), r.cmds...)
}

// Names returns the program name of each recorded command.
func (r *Recorder) Names() []string {
	var names []string
	for _, c := range r.Commands() {
		names = append(names, c.Name)
	}
	return names
}
