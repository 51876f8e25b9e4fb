package main

import (
	"github.com/spf13/cobra"

	"github.com/spaghettifunk/anima-build/internal/config"
	"github.com/spaghettifunk/anima-build/internal/core"
	"github.com/spaghettifunk/anima-build/internal/process"
	"github.com/spaghettifunk/anima-build/internal/shader"
)

type flags struct {
	configFile string
	verbose    bool
	optimize   bool
	debug      bool
	includes   []string
	defines    []string
	compiler   string
	extraArgs  string
	policy     string
	layout     string
	jobs       int
	noSort     bool
	watch      bool
}

func newRootCmd(runner process.Runner) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "shadercompiler <source_dir> <output_dir> [include_dir ...]",
		Short: "Compile every vertex and fragment shader of a tree to SPIR-V",
		Long: `shadercompiler walks <source_dir> recursively, compiles every .vert and .frag
file with the external shader compiler and writes <name>.spv files into
<output_dir>. The first shader that fails to compile stops the batch.

Arguments after the two directories are treated as extra include directories,
so "-I dir1 dir2 dir3" works as expected.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd, args)
			if err != nil {
				return err
			}
			core.SetVerbose(cfg.Verbose)

			if f.watch {
				w, err := shader.NewWatcher(cfg, runner)
				if err != nil {
					return err
				}
				return w.Run(cmd.Context())
			}
			_, err = shader.RunBatch(cmd.Context(), cfg, runner)
			return err
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configFile, "config", "", "TOML or YAML file with default settings")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "Display more log messages for debug reasons")
	fl.BoolVarP(&f.optimize, "optimize", "O", false, "Optimize SPIR-V for better performance")
	fl.BoolVarP(&f.debug, "debug", "g", false, "Generate debug information")
	fl.StringArrayVarP(&f.includes, "include", "I", nil, "Directory of include files (repeatable)")
	fl.StringArrayVarP(&f.defines, "define", "D", nil, "Preprocessor macro NAME[=VALUE] (repeatable)")
	fl.StringVar(&f.compiler, "compiler", config.DefaultCompiler, "Shader compiler executable")
	fl.StringVar(&f.extraArgs, "extra-args", "", "Extra arguments appended to every compiler invocation")
	fl.StringVar(&f.policy, "policy", string(config.PolicyExitCode), "Failure policy: exit-code or stderr")
	fl.StringVar(&f.layout, "layout", string(config.LayoutFlat), "Output layout: flat or mirror")
	fl.IntVarP(&f.jobs, "jobs", "j", 1, "Number of shaders compiled at the same time")
	fl.BoolVar(&f.noSort, "no-sort", false, "Compile in directory listing order instead of lexical order")
	fl.BoolVarP(&f.watch, "watch", "w", false, "Recompile whenever a shader changes")

	return cmd
}

// resolve layers defaults, the optional config file, flags and arguments.
func (f *flags) resolve(cmd *cobra.Command, args []string) (config.Shader, error) {
	cfg := config.DefaultShader()
	if f.configFile != "" {
		loaded, err := config.LoadShader(f.configFile)
		if err != nil {
			return config.Shader{}, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if changed("optimize") {
		cfg.Optimize = f.optimize
	}
	if changed("debug") {
		cfg.Debug = f.debug
	}
	if changed("define") {
		cfg.Defines = f.defines
	}
	if changed("compiler") {
		cfg.Compiler = f.compiler
	}
	if changed("extra-args") {
		cfg.ExtraArgs = f.extraArgs
	}
	if changed("policy") {
		cfg.Policy = config.FailurePolicy(f.policy)
	}
	if changed("layout") {
		cfg.Layout = config.Layout(f.layout)
	}
	if changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if changed("no-sort") {
		cfg.Sort = !f.noSort
	}

	cfg.Source = args[0]
	cfg.Output = args[1]
	if changed("include") || len(args) > 2 {
		cfg.Includes = append(append([]string{}, f.includes...), args[2:]...)
	}

	return cfg, cfg.Validate()
}
