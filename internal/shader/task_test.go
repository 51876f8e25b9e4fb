package shader

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-build/internal/config"
	"github.com/spaghettifunk/anima-build/internal/core"
	"github.com/spaghettifunk/anima-build/internal/process"
	"github.com/spaghettifunk/anima-build/internal/process/processtest"
)

func TestCompileTaskArgs(t *testing.T) {
	task := CompileTask{
		Source: Source{Path: "shaders/a.vert", Rel: "a.vert", Stage: StageVertex},
		Dest:   "out/a.vert.spv",
	}
	assert.Equal(t, []string{"shaders/a.vert", "-o", "out/a.vert.spv"}, task.Args())

	task.Optimize = true
	task.Includes = []string{"inc1", "inc2"}
	task.Debug = true
	task.Defines = []string{"AGE_DEBUG", "MAX_LIGHTS=4"}
	task.Extra = []string{"--target-env=vulkan1.2"}
	assert.Equal(t, []string{
		"shaders/a.vert", "-o", "out/a.vert.spv",
		"-O",
		"-I", "inc1", "-I", "inc2",
		"-g",
		"-DAGE_DEBUG", "-DMAX_LIGHTS=4",
		"--target-env=vulkan1.2",
	}, task.Args())
}

func TestCompileTaskArgsDoesNotAlias(t *testing.T) {
	includes := make([]string, 1, 8)
	includes[0] = "inc"
	task := CompileTask{Source: Source{Path: "a.vert"}, Dest: "a.vert.spv", Includes: includes}

	args := task.Args()
	args[0] = "changed"
	assert.Equal(t, "a.vert", task.Source.Path)
	assert.Equal(t, []string{"inc"}, task.Includes)
}

func TestDestination(t *testing.T) {
	src := Source{Path: filepath.Join("shaders", "sub", "b.frag"), Rel: filepath.Join("sub", "b.frag")}
	assert.Equal(t, filepath.Join("out", "b.frag.spv"), Destination("out", src, config.LayoutFlat))
	assert.Equal(t, filepath.Join("out", "sub", "b.frag.spv"), Destination("out", src, config.LayoutMirror))
}

func TestPlan(t *testing.T) {
	cfg := testConfig("shaders", "out")
	cfg.ExtraArgs = "-w"
	cfg.Includes = []string{"inc"}
	sources := []Source{
		{Path: filepath.Join("shaders", "a.vert"), Rel: "a.vert", Stage: StageVertex},
		{Path: filepath.Join("shaders", "sub", "b.frag"), Rel: filepath.Join("sub", "b.frag"), Stage: StageFragment},
	}

	tasks, err := Plan(cfg, sources)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, filepath.Join("out", "b.frag.spv"), tasks[1].Dest)
	assert.Equal(t, []string{"-w"}, tasks[0].Extra)
	assert.Equal(t, []string{"inc"}, tasks[1].Includes)

	sources = append(sources, Source{Path: filepath.Join("shaders", "b.frag"), Rel: "b.frag"})
	_, err = Plan(cfg, sources)
	assert.True(t, eris.Is(err, core.ErrOutputCollision))

	cfg.Layout = config.LayoutMirror
	_, err = Plan(cfg, sources)
	assert.NoError(t, err)
}

func TestClassify(t *testing.T) {
	clean := process.Output{}
	warned := process.Output{Stderr: "warning"}
	failed := process.Output{ExitCode: 1}
	silentFail := process.Output{ExitCode: 1, Stdout: "error on stdout"}

	assert.True(t, Classify(config.PolicyExitCode, clean))
	assert.True(t, Classify(config.PolicyExitCode, warned))
	assert.False(t, Classify(config.PolicyExitCode, failed))
	assert.False(t, Classify(config.PolicyExitCode, silentFail))

	assert.True(t, Classify(config.PolicyStderr, clean))
	assert.False(t, Classify(config.PolicyStderr, warned))
	assert.True(t, Classify(config.PolicyStderr, failed))
	assert.True(t, Classify(config.PolicyStderr, silentFail))
}

func TestCompilerCompile(t *testing.T) {
	cfg := testConfig("shaders", "out")
	cfg.Compiler = "glslangValidator"
	runner := &processtest.Recorder{Respond: func(_ context.Context, n int, args []string) (process.Output, error) {
		return process.Output{Stdout: "ok", Stderr: "warning: x", ExitCode: 0}, nil
	}}
	c := NewCompiler(cfg, runner)

	task := CompileTask{Source: Source{Path: "a.vert"}, Dest: "a.vert.spv"}
	res, err := c.Compile(context.Background(), task)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "ok", res.Stdout)
	assert.Equal(t, "warning: x", res.Stderr)
	assert.Equal(t, task, res.Task)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "glslangValidator", calls[0].Command)
	assert.Equal(t, task.Args(), calls[0].Args)
}
