//go:build mage

package main

import (
	"context"
	"os"

	"github.com/magefile/mage/mg"

	"github.com/spaghettifunk/anima-build/internal/config"
)

type Run mg.Namespace

// Runs the game executable, passing $AGE_ARGS through.
func (Run) Game(ctx context.Context) error {
	args, err := config.SplitArgs(os.Getenv(envRunArgs))
	if err != nil {
		return err
	}
	d, err := newDriver()
	if err != nil {
		return err
	}
	return d.Run(ctx, args...)
}

// Builds the project, compiles the shaders and runs the game.
func (Run) Engine(ctx context.Context) error {
	mg.SerialCtxDeps(ctx, Build.All)
	return Run{}.Game(ctx)
}
