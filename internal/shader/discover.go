package shader

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/anima-build/internal/core"
)

// Source is one shader file found under the source root.
type Source struct {
	// Path is the root joined with Rel.
	Path string
	// Rel is the path relative to the source root.
	Rel   string
	Stage Stage
}

type discoverer struct {
	sorted  bool
	visited map[string]struct{}
	found   []Source
}

// Discover walks root depth-first and returns every shader source below it.
// Entries of a directory are visited in lexical order when sorted is set,
// in the order the filesystem lists them otherwise. Symlinked directories are
// followed, but a directory reached twice through its resolved path is only
// walked once.
func Discover(root string, sorted bool) ([]Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(core.ErrSourceDirMissing, "%s", root)
		}
		return nil, eris.Wrapf(err, "unable to stat %s", root)
	}
	if !info.IsDir() {
		return nil, eris.Wrapf(core.ErrNotADirectory, "%s", root)
	}

	d := &discoverer{
		sorted:  sorted,
		visited: make(map[string]struct{}),
	}
	if err := d.walk(root, ""); err != nil {
		return nil, err
	}
	return d.found, nil
}

func (d *discoverer) walk(dir, rel string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return eris.Wrapf(err, "unable to resolve %s", dir)
	}
	if abs, err := filepath.Abs(resolved); err == nil {
		resolved = abs
	}
	if _, seen := d.visited[resolved]; seen {
		core.LogDebug("Skipping %s, already visited as %s", dir, resolved)
		return nil
	}
	d.visited[resolved] = struct{}{}

	entries, err := d.readDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)
		entryRel := filepath.Join(rel, name)

		isDir := entry.IsDir()
		isRegular := entry.Type().IsRegular()
		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				core.LogWarn("Skipping broken symlink %s", path)
				continue
			}
			isDir = target.IsDir()
			isRegular = target.Mode().IsRegular()
		}

		switch {
		case isDir:
			if err := d.walk(path, entryRel); err != nil {
				return err
			}
		case isRegular && IsSource(name):
			d.found = append(d.found, Source{
				Path:  path,
				Rel:   entryRel,
				Stage: StageFor(name),
			})
		}
	}
	return nil
}

func (d *discoverer) readDir(dir string) ([]fs.DirEntry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "unable to open %s", dir)
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, eris.Wrapf(err, "unable to list %s", dir)
	}
	if d.sorted {
		slices.SortFunc(entries, func(a, b fs.DirEntry) int {
			return strings.Compare(a.Name(), b.Name())
		})
	}
	return entries, nil
}
