package config

import (
	"runtime"

	"github.com/rotisserie/eris"

	"github.com/spaghettifunk/anima-build/internal/core"
)

// Driver configures the engine build driver.
type Driver struct {
	// BuildDir is where CMake generates and builds the project.
	BuildDir string `toml:"build_dir" yaml:"build_dir"`
	// Generator is handed to `cmake -G`.
	Generator string `toml:"generator" yaml:"generator"`
	// GameName is both the game's source directory and its executable name.
	GameName string `toml:"game_name" yaml:"game_name"`
	// EngineName is the engine's source directory and shared library name.
	EngineName string `toml:"engine_name" yaml:"engine_name"`
	// ShadersDir is the shader directory name inside the game and engine trees.
	ShadersDir string `toml:"shaders_dir" yaml:"shaders_dir"`
	// ShaderCompiler is the command line that starts the shader compiler.
	ShaderCompiler string `toml:"shader_compiler" yaml:"shader_compiler"`
	// TestsDir holds the unit test executables, relative to BuildDir.
	TestsDir string `toml:"tests_dir" yaml:"tests_dir"`
	Tools    bool   `toml:"tools" yaml:"tools"`
	Verbose  bool   `toml:"verbose" yaml:"verbose"`
}

func DefaultDriver() Driver {
	generator := "Unix Makefiles"
	if runtime.GOOS == "windows" {
		generator = "MinGW Makefiles"
	}
	return Driver{
		BuildDir:       "Build",
		Generator:      generator,
		GameName:       "ANG",
		EngineName:     "AGE",
		ShadersDir:     "Shaders",
		ShaderCompiler: "go run ./cmd/shadercompiler",
		TestsDir:       "Tests",
	}
}

// LoadDriver reads a driver config file on top of the defaults.
func LoadDriver(path string) (Driver, error) {
	cfg := DefaultDriver()
	if err := load(path, &cfg); err != nil {
		return Driver{}, err
	}
	return cfg, nil
}

func (d Driver) ShaderCompilerCommand() ([]string, error) {
	cmd, err := SplitArgs(d.ShaderCompiler)
	if err != nil {
		return nil, err
	}
	if len(cmd) == 0 {
		return nil, eris.Wrap(core.ErrInvalidConfig, "shader compiler command must be set")
	}
	return cmd, nil
}

func (d Driver) Validate() error {
	if d.BuildDir == "" {
		return eris.Wrap(core.ErrInvalidConfig, "build directory must be set")
	}
	if d.GameName == "" || d.EngineName == "" {
		return eris.Wrap(core.ErrInvalidConfig, "game and engine names must be set")
	}
	if d.Generator == "" {
		return eris.Wrap(core.ErrInvalidConfig, "cmake generator must be set")
	}
	if _, err := d.ShaderCompilerCommand(); err != nil {
		return err
	}
	return nil
}
