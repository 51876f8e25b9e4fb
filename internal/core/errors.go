package core

import (
	"github.com/rotisserie/eris"
)

var (
	ErrSourceDirMissing = eris.New("shader source directory does not exist")
	ErrNotADirectory    = eris.New("shader source path is not a directory")
	ErrOutputDir        = eris.New("unable to create output directory")
	ErrOutputCollision  = eris.New("multiple shaders map to the same output file")
	ErrCompileFailed    = eris.New("shader compilation failed")
	ErrInvalidConfig    = eris.New("invalid configuration")
	ErrCommandFailed    = eris.New("command failed")
)
