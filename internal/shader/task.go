package shader

import (
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/spaghettifunk/anima-build/internal/config"
	"github.com/spaghettifunk/anima-build/internal/core"
)

// Compiler flags understood by glslc and glslangValidator alike.
const (
	FlagOutput   = "-o"
	FlagOptimize = "-O"
	FlagInclude  = "-I"
	FlagDebug    = "-g"
	FlagDefine   = "-D"
)

// CompileTask is everything needed to compile a single shader.
type CompileTask struct {
	Source   Source
	Dest     string
	Includes []string
	Defines  []string
	Optimize bool
	Debug    bool
	Extra    []string
}

// Args builds the compiler argument list:
//
//	<source> -o <dest> [-O] [-I <dir>]... [-g] [-D<macro>]... [extra]...
func (t CompileTask) Args() []string {
	args := make([]string, 0, 4+2*len(t.Includes)+len(t.Defines)+len(t.Extra))
	args = append(args, t.Source.Path, FlagOutput, t.Dest)
	if t.Optimize {
		args = append(args, FlagOptimize)
	}
	for _, dir := range t.Includes {
		args = append(args, FlagInclude, dir)
	}
	if t.Debug {
		args = append(args, FlagDebug)
	}
	for _, def := range t.Defines {
		args = append(args, FlagDefine+def)
	}
	return append(args, t.Extra...)
}

// CompileResult is the outcome of one CompileTask.
type CompileResult struct {
	Task     CompileTask
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
}

// Destination names the artifact of src under output.
func Destination(output string, src Source, layout config.Layout) string {
	if layout == config.LayoutMirror {
		return filepath.Join(output, src.Rel+ExtSPIRV)
	}
	return filepath.Join(output, filepath.Base(src.Path)+ExtSPIRV)
}

// Plan turns discovered sources into compile tasks. With a flat layout two
// sources sharing a file name would overwrite each other's artifact, so that
// is rejected before anything runs.
func Plan(cfg config.Shader, sources []Source) ([]CompileTask, error) {
	extra, err := cfg.ExtraArgList()
	if err != nil {
		return nil, err
	}

	owners := make(map[string]string, len(sources))
	tasks := make([]CompileTask, 0, len(sources))
	for _, src := range sources {
		dest := Destination(cfg.Output, src, cfg.Layout)
		if prev, ok := owners[dest]; ok {
			return nil, eris.Wrapf(core.ErrOutputCollision, "%s and %s both compile to %s", prev, src.Path, dest)
		}
		owners[dest] = src.Path

		tasks = append(tasks, CompileTask{
			Source:   src,
			Dest:     dest,
			Includes: cfg.Includes,
			Defines:  cfg.Defines,
			Optimize: cfg.Optimize,
			Debug:    cfg.Debug,
			Extra:    extra,
		})
	}
	return tasks, nil
}
