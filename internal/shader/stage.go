package shader

import (
	"path/filepath"
)

type Stage uint8

const (
	StageInvalid Stage = iota
	StageVertex
	StageFragment
)

const (
	ExtVertex   = ".vert"
	ExtFragment = ".frag"
	// ExtInclude marks stage-less headers. They are only ever pulled in
	// through include directories, never compiled on their own.
	ExtInclude = ".glsl"
	// ExtSPIRV is appended to the source file name to name the artifact.
	ExtSPIRV = ".spv"
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "invalid"
	}
}

// StageFor maps a file name to the shader stage it is compiled as.
func StageFor(path string) Stage {
	switch filepath.Ext(path) {
	case ExtVertex:
		return StageVertex
	case ExtFragment:
		return StageFragment
	default:
		return StageInvalid
	}
}

// IsSource reports whether path is compiled on its own.
func IsSource(path string) bool {
	return StageFor(path) != StageInvalid
}

// IsShaderFile reports whether a change to path can affect a compiled shader.
func IsShaderFile(path string) bool {
	return IsSource(path) || filepath.Ext(path) == ExtInclude
}
