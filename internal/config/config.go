package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/pelletier/go-toml/v2"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/anima-build/internal/core"
)

// load decodes a TOML or YAML file into v. Keys missing from the file keep
// whatever value v already holds, so callers pass in their defaults.
func load(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "failed to read config file %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return eris.Wrapf(core.ErrInvalidConfig, "failed to parse %s: %v", path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return eris.Wrapf(core.ErrInvalidConfig, "failed to parse %s: %v", path, err)
		}
	default:
		return eris.Wrapf(core.ErrInvalidConfig, "unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

// SplitArgs splits a shell-style argument string ("--target-env=vulkan1.2 -w").
func SplitArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	args, err := shellwords.Parse(s)
	if err != nil {
		return nil, eris.Wrapf(core.ErrInvalidConfig, "unable to split %q: %v", s, err)
	}
	return args, nil
}
