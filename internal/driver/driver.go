package driver

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/magefile/mage/sh"
	"github.com/rotisserie/eris"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/anima-build/internal/config"
	"github.com/spaghettifunk/anima-build/internal/core"
	"github.com/spaghettifunk/anima-build/internal/process"
)

type BuildType string

const (
	Debug          BuildType = "Debug"
	ReleaseDbgInfo BuildType = "ReleaseDbgInfo"
	Release        BuildType = "Release"
)

var buildTypes = []BuildType{Debug, ReleaseDbgInfo, Release}

// ParseBuildType accepts debug | releaseDbgInfo | release in any case.
func ParseBuildType(s string) (BuildType, error) {
	for _, bt := range buildTypes {
		if strings.EqualFold(s, string(bt)) {
			return bt, nil
		}
	}
	return "", eris.Wrapf(core.ErrInvalidConfig, "unknown build configuration %q (debug | releaseDbgInfo | release)", s)
}

// CMake is the matching CMAKE_BUILD_TYPE.
func (b BuildType) CMake() string {
	if b == ReleaseDbgInfo {
		return "RelWithDebInfo"
	}
	return string(b)
}

// Macro is the build scheme define shaders are compiled with.
func (b BuildType) Macro() string {
	if b == Debug {
		return "AGE_DEBUG"
	}
	return "AGE_RELEASE"
}

// Driver runs the engine build pipeline, one external command at a time.
type Driver struct {
	cfg    config.Driver
	runner process.Runner
	log    *log.Logger
}

func New(cfg config.Driver, runner process.Runner) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Driver{
		cfg:    cfg,
		runner: runner,
		log:    core.Logger(),
	}, nil
}

func (d *Driver) run(ctx context.Context, dir, command string, args ...string) error {
	line := process.CommandLine(command, args...)
	d.log.Debugf("Running command: %s", line)

	opts := []process.Option{process.WithArgs(args...), process.WithStream()}
	if dir != "" {
		opts = append(opts, process.WithDir(dir))
	}
	out, err := d.runner.Run(ctx, command, opts...)
	if err != nil {
		return eris.Wrapf(err, "unable to run %s", line)
	}
	if !out.Success() {
		return eris.Wrapf(core.ErrCommandFailed, "%s exited with status %d", line, out.ExitCode)
	}
	return nil
}

// Configure generates the build files with CMake.
func (d *Driver) Configure(ctx context.Context, bt BuildType) error {
	args := []string{
		"-DCMAKE_BUILD_TYPE=" + bt.CMake(),
		"-G", d.cfg.Generator,
		"-B", d.cfg.BuildDir,
	}
	if d.cfg.Verbose {
		args = append(args, "-DCMAKE_EXPORT_COMPILE_COMMANDS=1")
	}
	if d.cfg.Tools {
		args = append(args, "-DAGE_TOOLS=1")
	}
	return d.run(ctx, "", "cmake", args...)
}

// Compile builds the generated project.
func (d *Driver) Compile(ctx context.Context) error {
	return d.run(ctx, "", "cmake", "--build", d.cfg.BuildDir)
}

// CopyArtifacts puts the engine shared library next to the game executable.
func (d *Driver) CopyArtifacts() error {
	lib := SharedLibrary(d.cfg.EngineName)
	src := filepath.Join(d.cfg.BuildDir, d.cfg.EngineName, lib)
	dst := filepath.Join(d.cfg.BuildDir, d.cfg.GameName, lib)
	d.log.Debugf("Copying %s to %s", src, dst)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return eris.Wrapf(err, "unable to create %s", filepath.Dir(dst))
	}
	if err := sh.Copy(dst, src); err != nil {
		return eris.Wrapf(err, "unable to copy %s", lib)
	}
	return nil
}

// Build configures, compiles and stages the engine library.
func (d *Driver) Build(ctx context.Context, bt BuildType) error {
	d.log.Infof("Building [%s]", bt)
	start := time.Now()

	if err := d.Configure(ctx, bt); err != nil {
		return err
	}
	if err := d.Compile(ctx); err != nil {
		return err
	}
	if err := d.CopyArtifacts(); err != nil {
		return err
	}

	d.log.Info("Build finished", "config", bt, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// ShaderArgs is the shader compiler invocation for the game's shaders.
// The engine's shaders are only reachable as includes.
func (d *Driver) ShaderArgs(bt BuildType) (string, []string, error) {
	cmd, err := d.cfg.ShaderCompilerCommand()
	if err != nil {
		return "", nil, err
	}

	gameShaders := filepath.Join(d.cfg.GameName, d.cfg.ShadersDir)
	engineShaders := filepath.Join(d.cfg.EngineName, d.cfg.ShadersDir)
	dest := filepath.Join(d.cfg.BuildDir, d.cfg.GameName, d.cfg.ShadersDir)

	args := append([]string{}, cmd[1:]...)
	args = append(args,
		gameShaders, dest,
		"-I", gameShaders,
		"-I", engineShaders,
		"-D", bt.Macro(),
	)
	if bt == Release {
		args = append(args, "-O")
	} else {
		args = append(args, "-g")
	}
	if d.cfg.Verbose {
		args = append(args, "-v")
	}
	return cmd[0], args, nil
}

// Shaders compiles the game's shaders into the build tree.
func (d *Driver) Shaders(ctx context.Context, bt BuildType) error {
	command, args, err := d.ShaderArgs(bt)
	if err != nil {
		return err
	}
	d.log.Infof("Compiling shaders [%s]", bt)
	return d.run(ctx, "", command, args...)
}

// Pipeline builds the project and then runs the tools pipeline on it.
func (d *Driver) Pipeline(ctx context.Context, bt BuildType) error {
	if err := d.Build(ctx, bt); err != nil {
		return err
	}
	return d.Shaders(ctx, bt)
}

// Tests runs every test executable found in the tests directory, in name
// order, and stops at the first one that fails.
func (d *Driver) Tests(ctx context.Context) error {
	dir := filepath.Join(d.cfg.BuildDir, d.cfg.TestsDir)
	tests, err := findExecutables(dir)
	if err != nil {
		return err
	}
	if len(tests) == 0 {
		d.log.Warnf("No test executables found in %s", dir)
		return nil
	}

	for _, test := range tests {
		d.log.Infof("Running %s", filepath.Base(test))
		if err := d.run(ctx, dir, test); err != nil {
			return err
		}
	}
	d.log.Info("All tests passed", "count", len(tests))
	return nil
}

// Run starts the game executable from its own directory.
func (d *Driver) Run(ctx context.Context, args ...string) error {
	gameDir := filepath.Join(d.cfg.BuildDir, d.cfg.GameName)
	exe, err := filepath.Abs(filepath.Join(gameDir, Executable(d.cfg.GameName)))
	if err != nil {
		return eris.Wrap(err, "unable to resolve game executable")
	}
	return d.run(ctx, gameDir, exe, args...)
}

// Clean removes the build directory.
func (d *Driver) Clean() error {
	d.log.Infof("Removing %s", d.cfg.BuildDir)
	if err := sh.Rm(d.cfg.BuildDir); err != nil {
		return eris.Wrapf(err, "unable to remove %s", d.cfg.BuildDir)
	}
	return nil
}

func findExecutables(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "unable to list %s", dir)
	}

	var found []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, eris.Wrapf(err, "unable to stat %s", entry.Name())
		}
		if isExecutable(entry.Name(), info.Mode()) {
			abs, err := filepath.Abs(filepath.Join(dir, entry.Name()))
			if err != nil {
				return nil, eris.Wrapf(err, "unable to resolve %s", entry.Name())
			}
			found = append(found, abs)
		}
	}
	slices.Sort(found)
	return found, nil
}

func isExecutable(name string, mode os.FileMode) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(filepath.Ext(name), ".exe")
	}
	return mode&0o111 != 0
}

// Executable is the platform file name of an executable.
func Executable(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// SharedLibrary is the platform file name of a CMake shared library target.
func SharedLibrary(name string) string {
	switch runtime.GOOS {
	case "windows":
		return "lib" + name + ".dll"
	case "darwin":
		return "lib" + name + ".dylib"
	default:
		return "lib" + name + ".so"
	}
}
