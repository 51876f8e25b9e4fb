package config

import (
	"github.com/rotisserie/eris"

	"github.com/spaghettifunk/anima-build/internal/core"
)

// FailurePolicy decides how a compiler invocation is classified.
type FailurePolicy string

const (
	// PolicyExitCode fails a shader when the compiler exits non-zero.
	// Anything written to stderr is only reported as a warning.
	PolicyExitCode FailurePolicy = "exit-code"
	// PolicyStderr fails a shader as soon as the compiler writes to stderr,
	// whatever its exit status. Warnings count as failures.
	PolicyStderr FailurePolicy = "stderr"
)

// Layout decides where artifacts land under the output directory.
type Layout string

const (
	// LayoutFlat puts every artifact directly under the output directory.
	LayoutFlat Layout = "flat"
	// LayoutMirror reproduces the source tree under the output directory.
	LayoutMirror Layout = "mirror"
)

const DefaultCompiler = "glslc"

// Shader configures one shader compilation batch.
type Shader struct {
	Compiler  string        `toml:"compiler" yaml:"compiler"`
	ExtraArgs string        `toml:"extra_args" yaml:"extra_args"`
	Source    string        `toml:"source" yaml:"source"`
	Output    string        `toml:"output" yaml:"output"`
	Includes  []string      `toml:"includes" yaml:"includes"`
	Defines   []string      `toml:"defines" yaml:"defines"`
	Optimize  bool          `toml:"optimize" yaml:"optimize"`
	Debug     bool          `toml:"debug" yaml:"debug"`
	Verbose   bool          `toml:"verbose" yaml:"verbose"`
	Policy    FailurePolicy `toml:"policy" yaml:"policy"`
	Layout    Layout        `toml:"layout" yaml:"layout"`
	Jobs      int           `toml:"jobs" yaml:"jobs"`
	Sort      bool          `toml:"sort" yaml:"sort"`
}

func DefaultShader() Shader {
	return Shader{
		Compiler: DefaultCompiler,
		Policy:   PolicyExitCode,
		Layout:   LayoutFlat,
		Jobs:     1,
		Sort:     true,
	}
}

// LoadShader reads a shader config file on top of the defaults.
func LoadShader(path string) (Shader, error) {
	cfg := DefaultShader()
	if err := load(path, &cfg); err != nil {
		return Shader{}, err
	}
	return cfg, nil
}

func (s Shader) ExtraArgList() ([]string, error) {
	return SplitArgs(s.ExtraArgs)
}

func (s Shader) Validate() error {
	if s.Compiler == "" {
		return eris.Wrap(core.ErrInvalidConfig, "compiler must be set")
	}
	if s.Source == "" {
		return eris.Wrap(core.ErrInvalidConfig, "source directory must be set")
	}
	if s.Output == "" {
		return eris.Wrap(core.ErrInvalidConfig, "output directory must be set")
	}
	switch s.Policy {
	case PolicyExitCode, PolicyStderr:
	default:
		return eris.Wrapf(core.ErrInvalidConfig, "unknown failure policy %q", s.Policy)
	}
	switch s.Layout {
	case LayoutFlat, LayoutMirror:
	default:
		return eris.Wrapf(core.ErrInvalidConfig, "unknown output layout %q", s.Layout)
	}
	if s.Jobs < 1 {
		return eris.Wrapf(core.ErrInvalidConfig, "jobs must be at least 1, got %d", s.Jobs)
	}
	if _, err := s.ExtraArgList(); err != nil {
		return err
	}
	return nil
}
