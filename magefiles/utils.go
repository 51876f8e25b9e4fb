//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"

	"github.com/spaghettifunk/anima-build/internal/config"
	"github.com/spaghettifunk/anima-build/internal/core"
	"github.com/spaghettifunk/anima-build/internal/driver"
	"github.com/spaghettifunk/anima-build/internal/process"
)

const (
	envConfig    = "AGE_CONFIG"
	envBuildType = "AGE_BUILD_TYPE"
	envRunArgs   = "AGE_ARGS"
)

// newDriver builds the driver from $AGE_CONFIG (if set) and mage's verbosity.
func newDriver() (*driver.Driver, error) {
	core.SetLogPrefix(core.PrefixDriver)

	cfg := config.DefaultDriver()
	if path := os.Getenv(envConfig); path != "" {
		loaded, err := config.LoadDriver(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if mg.Verbose() {
		cfg.Verbose = true
	}
	core.SetVerbose(cfg.Verbose)

	return driver.New(cfg, process.NewExec())
}

// buildType reads $AGE_BUILD_TYPE, defaulting to Debug.
func buildType() (driver.BuildType, error) {
	bt := os.Getenv(envBuildType)
	if bt == "" {
		return driver.Debug, nil
	}
	return driver.ParseBuildType(bt)
}

func withBuildType(fn func(d *driver.Driver, bt driver.BuildType) error) error {
	d, err := newDriver()
	if err != nil {
		return err
	}
	bt, err := buildType()
	if err != nil {
		return err
	}
	return fn(d, bt)
}
