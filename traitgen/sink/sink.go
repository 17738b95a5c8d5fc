// Package sink provides output destinations for generated units.
package sink

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/traitgen/ir"
)

// OutputSink receives generated files. Paths are slash separated and
// relative to the sink; see CheckPath. Implementations must be safe for
// concurrent use.
type OutputSink interface {
	WriteFile(ctx context.Context, path string, content []byte) error
}

// Remover is implemented by sinks that can withdraw a file written earlier.
// The processor uses it to retract the units of a host class whose
// generation failed part way.
type Remover interface {
	RemoveFile(ctx context.Context, path string) error
}

// JavaPath returns the source path of a top-level type:
// com.example.Foo -> com/example/Foo.java.
func JavaPath(name ir.ClassName) string {
	file := name.Simple + ".java"
	if name.Package == "" {
		return file
	}
	return strings.ReplaceAll(name.Package, ".", "/") + "/" + file
}

// CheckPath rejects paths a sink must not write: empty, absolute or drive
// paths, backslashes, and anything that is not a clean relative path
// without "." or ".." elements.
func CheckPath(path string) error {
	switch {
	case path == "":
		return errors.New("path is empty")
	case strings.ContainsAny(path, `:\`):
		return errors.Newf("path %q has a drive or backslash", path)
	case path == "." || !fs.ValidPath(path):
		return errors.Newf("path %q is not a clean relative path", path)
	}
	return nil
}

// Dir writes generated files below Root. Each file is staged in a temporary
// file next to its target and moved into place, so readers never see a
// partial file.
type Dir struct {
	Root string

	// Perm is the permission of written files. Zero means 0644.
	Perm os.FileMode

	// Keep refuses to replace existing files. The write fails instead and
	// the existing file is left untouched.
	Keep bool
}

// NewDir returns a Dir that replaces existing files under root.
func NewDir(root string) *Dir {
	return &Dir{Root: root, Perm: 0o644}
}

func (d *Dir) target(path string) (string, error) {
	if err := CheckPath(path); err != nil {
		return "", err
	}
	return filepath.Join(d.Root, filepath.FromSlash(path)), nil
}

// WriteFile writes content to path below Root, creating directories as
// needed.
func (d *Dir) WriteFile(ctx context.Context, path string, content []byte) error {
	full, err := d.target(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := d.stage(filepath.Dir(full), content)
	if err != nil {
		return errors.Wrapf(err, "stage %s", path)
	}
	// Once the file is in place this only removes the staging name.
	defer os.Remove(tmp)

	if err := ctx.Err(); err != nil {
		return err
	}
	if !d.Keep {
		return errors.Wrapf(os.Rename(tmp, full), "place %s", path)
	}
	// Link fails if full exists, which a stat before rename cannot promise.
	if err := os.Link(tmp, full); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return errors.Newf("%s already exists", path)
		}
		return errors.Wrapf(err, "place %s", path)
	}
	return nil
}

// stage writes content to a new hidden file in dir and returns its name.
func (d *Dir) stage(dir string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, ".traitgen-*.tmp")
	if err != nil {
		return "", err
	}
	name := f.Name()
	_, err = f.Write(content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		perm := d.Perm
		if perm == 0 {
			perm = 0o644
		}
		err = os.Chmod(name, perm)
	}
	if err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

// RemoveFile deletes path below Root. A missing file is not an error.
func (d *Dir) RemoveFile(ctx context.Context, path string) error {
	full, err := d.target(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "remove %s", path)
	}
	return nil
}

// Memory keeps generated files in a map.
type Memory struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemory returns an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

// WriteFile stores a copy of content, replacing any earlier file.
func (m *Memory) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := CheckPath(path); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = bytes.Clone(content)
	return nil
}

// RemoveFile forgets path.
func (m *Memory) RemoveFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

// Files returns a copy of the stored files by path.
func (m *Memory) Files() map[string][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.files))
	for p, c := range m.files {
		out[p] = bytes.Clone(c)
	}
	return out
}
