package shader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/spaghettifunk/anima-build/internal/config"
	"github.com/spaghettifunk/anima-build/internal/core"
	"github.com/spaghettifunk/anima-build/internal/process"
)

// BatchResult summarizes one end-to-end compilation run.
type BatchResult struct {
	ID        uuid.UUID
	Attempted int
	Succeeded int
	// Failed is the result that stopped the batch, nil when it went through.
	Failed *CompileResult
	// Interrupted is set when the caller's context ended the batch early.
	Interrupted bool
}

func (b BatchResult) Success() bool {
	return b.Failed == nil && !b.Interrupted
}

// RunBatch discovers every shader under cfg.Source and compiles it into
// cfg.Output. The batch is all-or-nothing: the first failing shader stops it
// and no further shader is started. With cfg.Jobs > 1 shaders compile
// concurrently and a failure also kills the compilers still running.
func RunBatch(ctx context.Context, cfg config.Shader, runner process.Runner) (BatchResult, error) {
	res := BatchResult{ID: uuid.New()}
	logger := core.Logger().With("batch", res.ID.String()[:8])

	if err := cfg.Validate(); err != nil {
		return res, err
	}

	logger.Debugf("Compiling shaders from path %s to destination %s", cfg.Source, cfg.Output)
	if cfg.Optimize {
		logger.Debug("Optimize enabled.")
	}
	if len(cfg.Includes) > 0 {
		logger.Debug("Include Directories:")
		for _, dir := range cfg.Includes {
			logger.Debugf(" - %s", dir)
		}
	}

	sources, err := Discover(cfg.Source, cfg.Sort)
	if err != nil {
		return res, err
	}
	tasks, err := Plan(cfg, sources)
	if err != nil {
		return res, err
	}
	if err := prepareOutput(logger, cfg, tasks); err != nil {
		return res, err
	}

	compiler := NewCompiler(cfg, runner)
	compiler.Log = logger

	if cfg.Jobs > 1 {
		err = runParallel(ctx, compiler, tasks, cfg.Jobs, &res)
	} else {
		err = runSequential(ctx, compiler, tasks, &res)
	}
	if err != nil {
		return res, err
	}

	logger.Info("Compilation Complete", "shaders", res.Succeeded)
	return res, nil
}

func prepareOutput(logger *log.Logger, cfg config.Shader, tasks []CompileTask) error {
	if _, err := os.Stat(cfg.Output); os.IsNotExist(err) {
		logger.Debugf("Creating %s", cfg.Output)
	}
	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return eris.Wrapf(core.ErrOutputDir, "%s: %v", cfg.Output, err)
	}
	if cfg.Layout != config.LayoutMirror {
		return nil
	}
	for _, task := range tasks {
		dir := filepath.Dir(task.Dest)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(core.ErrOutputDir, "%s: %v", dir, err)
		}
	}
	return nil
}

func runSequential(ctx context.Context, compiler *Compiler, tasks []CompileTask, res *BatchResult) error {
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return interrupted(res, err)
		}
		r, err := compiler.Compile(ctx, task)
		res.Attempted++
		if ctxErr := ctx.Err(); ctxErr != nil {
			return interrupted(res, ctxErr)
		}
		if err != nil || !r.Success {
			res.Failed = &r
			return failure(compiler.Log, r, err)
		}
		res.Succeeded++
	}
	return nil
}

func runParallel(ctx context.Context, compiler *Compiler, tasks []CompileTask, jobs int, res *BatchResult) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	var mu sync.Mutex
	for _, task := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			r, err := compiler.Compile(gctx, task)

			mu.Lock()
			defer mu.Unlock()
			res.Attempted++
			if err != nil || !r.Success {
				// compilers killed because another shader already failed,
				// or because the caller gave up, did not fail on their own
				if res.Failed != nil || ctx.Err() != nil {
					return nil
				}
				res.Failed = &r
				return failure(compiler.Log, r, err)
			}
			res.Succeeded++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return interrupted(res, err)
	}
	return nil
}

func interrupted(res *BatchResult, cause error) error {
	res.Interrupted = true
	return eris.Wrap(cause, "shader compilation interrupted")
}

// failure builds the error that stops the batch. Only the compiler output is
// logged here, the error itself is reported by the caller.
func failure(logger *log.Logger, r CompileResult, cause error) error {
	path := r.Task.Source.Path
	if cause != nil {
		return eris.Wrapf(core.ErrCompileFailed, "%s: %v", path, cause)
	}
	if out := strings.TrimSpace(r.Stdout); out != "" {
		logger.Error(out)
	}
	if out := strings.TrimSpace(r.Stderr); out != "" {
		logger.Error(out)
	}
	return eris.Wrapf(core.ErrCompileFailed, "%s (exit status %d)", path, r.ExitCode)
}
