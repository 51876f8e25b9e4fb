// Package processtest provides a process.Runner that never starts anything.
package processtest

import (
	"context"
	"sync"

	"github.com/spaghettifunk/anima-build/internal/process"
)

type Call struct {
	Command string
	Args    []string
	Dir     string
	Env     []string
	Stream  bool
}

// Recorder records every command it is asked to run and answers with
// Respond, or with an empty successful Output when Respond is nil.
// n is the 1-based index of the call.
type Recorder struct {
	Respond func(ctx context.Context, n int, args []string) (process.Output, error)

	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) Run(ctx context.Context, command string, options ...process.Option) (process.Output, error) {
	args, dir, env, stream := process.Apply(options...)

	r.mu.Lock()
	r.calls = append(r.calls, Call{Command: command, Args: args, Dir: dir, Env: env, Stream: stream})
	n := len(r.calls)
	r.mu.Unlock()

	if r.Respond == nil {
		return process.Output{}, nil
	}
	return r.Respond(ctx, n, args)
}

func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Sources returns the first argument of every call.
func (r *Recorder) Sources() []string {
	var out []string
	for _, c := range r.Calls() {
		if len(c.Args) > 0 {
			out = append(out, c.Args[0])
		}
	}
	return out
}
