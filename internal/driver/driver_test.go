package driver

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-build/internal/config"
	"github.com/spaghettifunk/anima-build/internal/core"
	"github.com/spaghettifunk/anima-build/internal/process"
	"github.com/spaghettifunk/anima-build/internal/process/processtest"
)

func testDriver(t *testing.T, runner process.Runner) (*Driver, config.Driver) {
	t.Helper()
	cfg := config.DefaultDriver()
	cfg.BuildDir = filepath.Join(t.TempDir(), "Build")
	cfg.Generator = "Ninja"
	d, err := New(cfg, runner)
	require.NoError(t, err)
	return d, cfg
}

func TestParseBuildType(t *testing.T) {
	for in, want := range map[string]BuildType{
		"debug":          Debug,
		"Debug":          Debug,
		"releaseDbgInfo": ReleaseDbgInfo,
		"RELEASE":        Release,
	} {
		got, err := ParseBuildType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseBuildType("profile")
	require.Error(t, err)
	assert.True(t, eris.Is(err, core.ErrInvalidConfig))
}

func TestBuildTypeMappings(t *testing.T) {
	assert.Equal(t, "Debug", Debug.CMake())
	assert.Equal(t, "RelWithDebInfo", ReleaseDbgInfo.CMake())
	assert.Equal(t, "Release", Release.CMake())

	assert.Equal(t, "AGE_DEBUG", Debug.Macro())
	assert.Equal(t, "AGE_RELEASE", ReleaseDbgInfo.Macro())
	assert.Equal(t, "AGE_RELEASE", Release.Macro())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultDriver()
	cfg.BuildDir = ""
	_, err := New(cfg, &processtest.Recorder{})
	assert.True(t, eris.Is(err, core.ErrInvalidConfig))
}

func TestConfigure(t *testing.T) {
	runner := &processtest.Recorder{}
	d, cfg := testDriver(t, runner)

	require.NoError(t, d.Configure(context.Background(), ReleaseDbgInfo))
	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "cmake", calls[0].Command)
	assert.Equal(t, []string{"-DCMAKE_BUILD_TYPE=RelWithDebInfo", "-G", "Ninja", "-B", cfg.BuildDir}, calls[0].Args)
	assert.True(t, calls[0].Stream)
}

func TestConfigureVerboseAndTools(t *testing.T) {
	runner := &processtest.Recorder{}
	cfg := config.DefaultDriver()
	cfg.Verbose = true
	cfg.Tools = true
	d, err := New(cfg, runner)
	require.NoError(t, err)

	require.NoError(t, d.Configure(context.Background(), Debug))
	args := runner.Calls()[0].Args
	assert.Contains(t, args, "-DCMAKE_EXPORT_COMPILE_COMMANDS=1")
	assert.Contains(t, args, "-DAGE_TOOLS=1")
}

func TestBuildRunsStepsInOrderAndCopiesLibrary(t *testing.T) {
	runner := &processtest.Recorder{}
	d, cfg := testDriver(t, runner)

	lib := SharedLibrary(cfg.EngineName)
	engineDir := filepath.Join(cfg.BuildDir, cfg.EngineName)
	require.NoError(t, os.MkdirAll(engineDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(engineDir, lib), []byte("elf"), 0o644))

	require.NoError(t, d.Build(context.Background(), Debug))

	calls := runner.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "-DCMAKE_BUILD_TYPE=Debug", calls[0].Args[0])
	assert.Equal(t, []string{"--build", cfg.BuildDir}, calls[1].Args)

	data, err := os.ReadFile(filepath.Join(cfg.BuildDir, cfg.GameName, lib))
	require.NoError(t, err)
	assert.Equal(t, "elf", string(data))
}

func TestBuildStopsWhenConfigureFails(t *testing.T) {
	runner := &processtest.Recorder{Respond: func(_ context.Context, n int, args []string) (process.Output, error) {
		return process.Output{ExitCode: 1}, nil
	}}
	d, _ := testDriver(t, runner)

	err := d.Build(context.Background(), Debug)
	require.Error(t, err)
	assert.True(t, eris.Is(err, core.ErrCommandFailed))
	assert.Len(t, runner.Calls(), 1)
}

func TestBuildFailsWithoutLibrary(t *testing.T) {
	runner := &processtest.Recorder{}
	d, _ := testDriver(t, runner)

	require.Error(t, d.Build(context.Background(), Release))
	assert.Len(t, runner.Calls(), 2)
}

func TestShaderArgs(t *testing.T) {
	d, cfg := testDriver(t, &processtest.Recorder{})

	command, args, err := d.ShaderArgs(Release)
	require.NoError(t, err)
	assert.Equal(t, "go", command)
	assert.Equal(t, []string{
		"run", "./cmd/shadercompiler",
		filepath.Join("ANG", "Shaders"),
		filepath.Join(cfg.BuildDir, "ANG", "Shaders"),
		"-I", filepath.Join("ANG", "Shaders"),
		"-I", filepath.Join("AGE", "Shaders"),
		"-D", "AGE_RELEASE",
		"-O",
	}, args)

	_, args, err = d.ShaderArgs(Debug)
	require.NoError(t, err)
	assert.Contains(t, args, "AGE_DEBUG")
	assert.Contains(t, args, "-g")
	assert.NotContains(t, args, "-O")
}

func TestPipelineCompilesShadersAfterBuild(t *testing.T) {
	runner := &processtest.Recorder{}
	d, cfg := testDriver(t, runner)
	engineDir := filepath.Join(cfg.BuildDir, cfg.EngineName)
	require.NoError(t, os.MkdirAll(engineDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(engineDir, SharedLibrary(cfg.EngineName)), nil, 0o644))

	require.NoError(t, d.Pipeline(context.Background(), Release))
	calls := runner.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "go", calls[2].Command)
}

func TestTestsRunsExecutablesUntilFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit is not used on windows")
	}
	runner := &processtest.Recorder{Respond: func(_ context.Context, n int, args []string) (process.Output, error) {
		if n == 2 {
			return process.Output{ExitCode: 1}, nil
		}
		return process.Output{}, nil
	}}
	d, cfg := testDriver(t, runner)

	dir := filepath.Join(cfg.BuildDir, cfg.TestsDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"c_tests", "a_tests", "b_tests"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CMakeCache.txt"), nil, 0o644))

	err := d.Tests(context.Background())
	require.Error(t, err)
	assert.True(t, eris.Is(err, core.ErrCommandFailed))

	calls := runner.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "a_tests", filepath.Base(calls[0].Command))
	assert.Equal(t, "b_tests", filepath.Base(calls[1].Command))
	assert.Equal(t, dir, calls[0].Dir)
}

func TestTestsWithoutTestDirectory(t *testing.T) {
	runner := &processtest.Recorder{}
	d, _ := testDriver(t, runner)

	require.NoError(t, d.Tests(context.Background()))
	assert.Empty(t, runner.Calls())
}

func TestRunPassesArguments(t *testing.T) {
	runner := &processtest.Recorder{}
	d, cfg := testDriver(t, runner)

	require.NoError(t, d.Run(context.Background(), "--fullscreen", "--width=1920"))
	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, filepath.Join(cfg.BuildDir, cfg.GameName, Executable(cfg.GameName)), calls[0].Command)
	assert.Equal(t, []string{"--fullscreen", "--width=1920"}, calls[0].Args)
	assert.Equal(t, filepath.Join(cfg.BuildDir, cfg.GameName), calls[0].Dir)
}

func TestClean(t *testing.T) {
	d, cfg := testDriver(t, &processtest.Recorder{})
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.BuildDir, "ANG"), 0o755))

	require.NoError(t, d.Clean())
	assert.NoDirExists(t, cfg.BuildDir)
	// cleaning twice is fine
	require.NoError(t, d.Clean())
}

func TestPlatformNames(t *testing.T) {
	switch runtime.GOOS {
	case "windows":
		assert.Equal(t, "libAGE.dll", SharedLibrary("AGE"))
		assert.Equal(t, "ANG.exe", Executable("ANG"))
	case "darwin":
		assert.Equal(t, "libAGE.dylib", SharedLibrary("AGE"))
	default:
		assert.Equal(t, "libAGE.so", SharedLibrary("AGE"))
		assert.Equal(t, "ANG", Executable("ANG"))
	}
}
