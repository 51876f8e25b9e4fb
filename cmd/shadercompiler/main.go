/*
shadercompiler compiles the vertex and fragment shaders of a directory tree
into SPIR-V by calling glslc (or any compatible compiler) once per file.
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima-build/internal/core"
	"github.com/spaghettifunk/anima-build/internal/process"
)

func main() {
	core.SetLogPrefix(core.PrefixShaderCompilation)

	// signal context to stop the compiler currently running
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newRootCmd(process.NewExec()).ExecuteContext(ctx); err != nil {
		core.LogError("%v", err)
		stop()
		os.Exit(1)
	}
}
