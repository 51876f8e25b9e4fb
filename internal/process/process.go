package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/syntax"
)

type cmdOptions struct {
	args   []string
	dir    string
	env    []string
	stream bool
}

type Option func(*cmdOptions)

func WithArgs(args ...string) Option {
	return func(o *cmdOptions) {
		o.args = args
	}
}

func WithDir(dir string) Option {
	return func(o *cmdOptions) {
		o.dir = dir
	}
}

// WithEnv appends KEY=VALUE pairs to the inherited environment.
func WithEnv(env ...string) Option {
	return func(o *cmdOptions) {
		o.env = append(o.env, env...)
	}
}

// WithStream mirrors the child's output on the terminal while it is captured.
func WithStream() Option {
	return func(o *cmdOptions) {
		o.stream = true
	}
}

// Apply resolves a list of options. Useful for Runner fakes.
func Apply(options ...Option) (args []string, dir string, env []string, stream bool) {
	opts := &cmdOptions{}
	for _, o := range options {
		o(opts)
	}
	return opts.args, opts.dir, opts.env, opts.stream
}

// Output is what a finished child process left behind.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func (o Output) Success() bool {
	return o.ExitCode == 0
}

// Runner starts an external command and waits for it.
// A non-zero exit status is not an error: it is reported in Output.ExitCode.
// Errors are reserved for processes that could not be started or were cancelled.
type Runner interface {
	Run(ctx context.Context, command string, options ...Option) (Output, error)
}

// Exec runs commands through os/exec.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
}

func NewExec() *Exec {
	return &Exec{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (e *Exec) Run(ctx context.Context, command string, options ...Option) (Output, error) {
	args, dir, env, stream := Apply(options...)

	cmd := exec.CommandContext(ctx, command, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var stdout, stderr bytes.Buffer
	if stream {
		cmd.Stdout = io.MultiWriter(&stdout, e.Stdout)
		cmd.Stderr = io.MultiWriter(&stderr, e.Stderr)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	out := Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return out, eris.Wrapf(ctx.Err(), "%s was cancelled", command)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, eris.Wrapf(err, "error executing %s", command)
}

// CommandLine renders a command the way a user would type it in a shell.
func CommandLine(command string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{command}, args...) {
		q, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			q = a
		}
		parts = append(parts, q)
	}
	return strings.Join(parts, " ")
}
