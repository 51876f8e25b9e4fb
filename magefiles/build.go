//go:build mage

package main

import (
	"context"

	"github.com/magefile/mage/mg"

	"github.com/spaghettifunk/anima-build/internal/driver"
)

type Build mg.Namespace

func build(ctx context.Context, bt driver.BuildType) error {
	d, err := newDriver()
	if err != nil {
		return err
	}
	return d.Build(ctx, bt)
}

// Configures and builds the project in Debug.
func (Build) Debug(ctx context.Context) error {
	return build(ctx, driver.Debug)
}

// Configures and builds the project in Release.
func (Build) Release(ctx context.Context) error {
	return build(ctx, driver.Release)
}

// Configures and builds the project in Release with debug info.
func (Build) ReleaseDbgInfo(ctx context.Context) error {
	return build(ctx, driver.ReleaseDbgInfo)
}

// Builds the project ($AGE_BUILD_TYPE, Debug by default) and runs the entire tools pipeline.
func (Build) All(ctx context.Context) error {
	return withBuildType(func(d *driver.Driver, bt driver.BuildType) error {
		return d.Pipeline(ctx, bt)
	})
}

// Compiles the game shaders into the build directory.
func Shaders(ctx context.Context) error {
	return withBuildType(func(d *driver.Driver, bt driver.BuildType) error {
		return d.Shaders(ctx, bt)
	})
}

// Runs every unit test executable of the build.
func Test(ctx context.Context) error {
	d, err := newDriver()
	if err != nil {
		return err
	}
	return d.Tests(ctx)
}

// Removes the build directory.
func Clean() error {
	d, err := newDriver()
	if err != nil {
		return err
	}
	return d.Clean()
}
