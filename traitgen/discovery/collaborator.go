package discovery

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/tisoft/java-traits/internal/errors"
)

// Static is a Collaborator over a fixed element list. Diagnostics go to
// Reporter, or are dropped when it is nil.
type Static struct {
	Items    []Element
	Reporter Reporter
}

func (s *Static) Elements(ctx context.Context) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Element(nil), s.Items...), nil
}

func (s *Static) Report(d Diagnostic) {
	if s.Reporter != nil {
		s.Reporter.Report(d)
	}
}

// Manifests is a Collaborator reading manifest files. Each path is either a
// manifest or a directory searched recursively for manifests. Files are read
// afresh on every call, so a watcher can run one round per change.
type Manifests struct {
	Paths    []string
	Reporter Reporter
}

// NewManifests returns a collaborator over paths reporting to r.
func NewManifests(r Reporter, paths ...string) *Manifests {
	return &Manifests{Paths: paths, Reporter: r}
}

func (m *Manifests) Elements(ctx context.Context) ([]Element, error) {
	files, err := m.Files()
	if err != nil {
		return nil, err
	}
	var out []Element
	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		elems, err := LoadFile(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, elems...)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Manifests) Report(d Diagnostic) {
	if m.Reporter != nil {
		m.Reporter.Report(d)
	}
}

// Files expands Paths into the sorted list of manifest files. Hidden
// directories are skipped.
func (m *Manifests) Files() ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}
	for _, p := range m.Paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.IO(err, "stat %s", p)
		}
		if !info.IsDir() {
			add(filepath.Clean(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && len(d.Name()) > 1 && d.Name()[0] == '.' {
					return filepath.SkipDir
				}
				return nil
			}
			if IsManifest(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.IO(err, "walk %s", p)
		}
	}
	sort.Strings(files)
	return files, nil
}
