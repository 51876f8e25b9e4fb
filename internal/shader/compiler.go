package shader

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/rotisserie/eris"

	"github.com/spaghettifunk/anima-build/internal/config"
	"github.com/spaghettifunk/anima-build/internal/core"
	"github.com/spaghettifunk/anima-build/internal/process"
)

// Compiler runs the external shader compiler on one task at a time.
type Compiler struct {
	Bin    string
	Policy config.FailurePolicy
	Runner process.Runner
	Log    *log.Logger
}

func NewCompiler(cfg config.Shader, runner process.Runner) *Compiler {
	return &Compiler{
		Bin:    cfg.Compiler,
		Policy: cfg.Policy,
		Runner: runner,
		Log:    core.Logger(),
	}
}

// Compile invokes the compiler for task and classifies the outcome according
// to the compiler's failure policy. The returned error is only set when the
// compiler could not be run at all; the result is then a failure.
func (c *Compiler) Compile(ctx context.Context, task CompileTask) (CompileResult, error) {
	args := task.Args()
	c.Log.Debug("Compiling", "shader", task.Source.Path, "stage", task.Source.Stage)
	c.Log.Debugf("Running command: %s", process.CommandLine(c.Bin, args...))

	out, err := c.Runner.Run(ctx, c.Bin, process.WithArgs(args...))
	res := CompileResult{
		Task:     task,
		Stdout:   out.Stdout,
		Stderr:   out.Stderr,
		ExitCode: out.ExitCode,
	}
	if err != nil {
		return res, eris.Wrapf(err, "unable to run %s", c.Bin)
	}

	res.Success = Classify(c.Policy, out)
	if res.Success && out.Stderr != "" {
		c.Log.Warn("compiler reported diagnostics", "shader", task.Source.Path, "stderr", strings.TrimSpace(out.Stderr))
	}
	return res, nil
}

// Classify decides whether a finished compiler run succeeded.
func Classify(policy config.FailurePolicy, out process.Output) bool {
	if policy == config.PolicyStderr {
		return len(out.Stderr) == 0
	}
	return out.ExitCode == 0
}
