package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/tisoft/java-traits/traitgen/ir"
)

func TestCheckPath(t *testing.T) {
	tests := []struct {
		path   string
		errMsg string
	}{
		{path: "com/example/Foo.java"},
		{path: "Foo.java"},
		{path: "com/example/Größe.java"},
		{path: "", errMsg: "empty"},
		{path: "/abs/Foo.java", errMsg: "not a clean relative path"},
		{path: "C:/Foo.java", errMsg: "drive or backslash"},
		{path: `com\Foo.java`, errMsg: "drive or backslash"},
		{path: "com/../Foo.java", errMsg: "not a clean relative path"},
		{path: "../Foo.java", errMsg: "not a clean relative path"},
		{path: "./Foo.java", errMsg: "not a clean relative path"},
		{path: "com//Foo.java", errMsg: "not a clean relative path"},
		{path: "com/", errMsg: "not a clean relative path"},
		{path: ".", errMsg: "not a clean relative path"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := CheckPath(tt.path)
			if tt.errMsg == "" {
				if err != nil {
					t.Fatalf("CheckPath(%q) = %v, want nil", tt.path, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("CheckPath(%q) = %v, want error containing %q", tt.path, err, tt.errMsg)
			}
		})
	}
}

func TestJavaPath(t *testing.T) {
	tests := []struct {
		name ir.ClassName
		want string
	}{
		{ir.ClassName{Package: "com.example.traits", Simple: "IRectangular"}, "com/example/traits/IRectangular.java"},
		{ir.ClassName{Package: "p", Simple: "A__HDelegate"}, "p/A__HDelegate.java"},
		{ir.ClassName{Simple: "Default"}, "Default.java"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := JavaPath(tt.name); got != tt.want {
				t.Errorf("JavaPath(%v) = %q, want %q", tt.name, got, tt.want)
			}
			if err := CheckPath(JavaPath(tt.name)); err != nil {
				t.Errorf("JavaPath(%v) is not a valid sink path: %v", tt.name, err)
			}
		})
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("replace and remove", func(t *testing.T) {
		m := NewMemory()
		for _, c := range []string{"first", "second"} {
			if err := m.WriteFile(ctx, "a/A.java", []byte(c)); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
		}
		if got := string(m.Files()["a/A.java"]); got != "second" {
			t.Errorf("content = %q, want %q", got, "second")
		}
		if err := m.RemoveFile(ctx, "a/A.java"); err != nil {
			t.Fatalf("RemoveFile() error = %v", err)
		}
		if n := len(m.Files()); n != 0 {
			t.Errorf("Files() length after RemoveFile() = %d, want 0", n)
		}
	})

	t.Run("stores and returns copies", func(t *testing.T) {
		m := NewMemory()
		content := []byte("original")
		if err := m.WriteFile(ctx, "A.java", content); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		content[0] = 'X'
		files := m.Files()
		files["A.java"][1] = 'Y'
		files["B.java"] = []byte("b")

		got := m.Files()
		if string(got["A.java"]) != "original" || len(got) != 1 {
			t.Errorf("Files() = %q, modification leaked", got)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := NewMemory().WriteFile(cctx, "A.java", []byte("x")); err == nil {
			t.Error("WriteFile() with cancelled context should return error")
		}
	})

	t.Run("invalid path", func(t *testing.T) {
		if err := NewMemory().WriteFile(ctx, "../A.java", nil); err == nil {
			t.Error("WriteFile() with invalid path should return error")
		}
	})
}

func TestMemoryConcurrent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := m.WriteFile(ctx, fmt.Sprintf("p%d/T.java", i), []byte("x")); err != nil {
				t.Errorf("WriteFile() error = %v", err)
			}
			_ = m.Files()
		}(i)
	}
	wg.Wait()

	if got := len(m.Files()); got != n {
		t.Errorf("Files() length = %d, want %d", got, n)
	}
}

func readFile(t *testing.T, root, path string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return string(data)
}

func TestDir(t *testing.T) {
	ctx := context.Background()

	t.Run("creates parent directories", func(t *testing.T) {
		root := t.TempDir()
		if err := NewDir(root).WriteFile(ctx, "com/example/Foo.java", []byte("class Foo {}")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if got := readFile(t, root, "com/example/Foo.java"); got != "class Foo {}" {
			t.Errorf("content = %q", got)
		}
	})

	t.Run("zero Perm means 0644", func(t *testing.T) {
		root := t.TempDir()
		if err := (&Dir{Root: root}).WriteFile(ctx, "A.java", []byte("x")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		info, err := os.Stat(filepath.Join(root, "A.java"))
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if info.Mode().Perm() != 0o644 {
			t.Errorf("mode = %v, want 0644", info.Mode().Perm())
		}
	})

	t.Run("replaces by default", func(t *testing.T) {
		root := t.TempDir()
		d := NewDir(root)
		for _, c := range []string{"first", "second"} {
			if err := d.WriteFile(ctx, "A.java", []byte(c)); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
		}
		if got := readFile(t, root, "A.java"); got != "second" {
			t.Errorf("content = %q, want %q", got, "second")
		}
	})

	t.Run("Keep refuses to replace", func(t *testing.T) {
		root := t.TempDir()
		d := &Dir{Root: root, Keep: true}
		if err := d.WriteFile(ctx, "a/A.java", []byte("first")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		err := d.WriteFile(ctx, "a/A.java", []byte("second"))
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Fatalf("WriteFile() error = %v, want already exists", err)
		}
		if got := readFile(t, root, "a/A.java"); got != "first" {
			t.Errorf("content = %q, want %q", got, "first")
		}
		entries, _ := os.ReadDir(filepath.Join(root, "a"))
		if len(entries) != 1 {
			t.Errorf("directory has %d entries, want 1 (staging file left behind)", len(entries))
		}
	})

	t.Run("rejects escaping paths", func(t *testing.T) {
		d := NewDir(t.TempDir())
		for _, p := range []string{"/etc/A.java", "../A.java", "a/../../A.java"} {
			if err := d.WriteFile(ctx, p, []byte("x")); err == nil {
				t.Errorf("WriteFile(%q) should fail", p)
			}
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		root := t.TempDir()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := NewDir(root).WriteFile(cctx, "A.java", []byte("x")); err == nil {
			t.Fatal("WriteFile() with cancelled context should return error")
		}
		if _, err := os.Stat(filepath.Join(root, "A.java")); !os.IsNotExist(err) {
			t.Errorf("file should not exist after cancelled write")
		}
	})

	t.Run("no staging files left behind", func(t *testing.T) {
		root := t.TempDir()
		d := NewDir(root)
		for i := 0; i < 3; i++ {
			if err := d.WriteFile(ctx, "a/A.java", []byte(fmt.Sprint(i))); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
		}
		entries, err := os.ReadDir(filepath.Join(root, "a"))
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("directory has %d entries, want 1", len(entries))
		}
	})

	t.Run("remove", func(t *testing.T) {
		root := t.TempDir()
		d := NewDir(root)
		if err := d.WriteFile(ctx, "a/A.java", []byte("x")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		for i := 0; i < 2; i++ {
			if err := d.RemoveFile(ctx, "a/A.java"); err != nil {
				t.Fatalf("RemoveFile() #%d error = %v", i, err)
			}
		}
		if _, err := os.Stat(filepath.Join(root, "a", "A.java")); !os.IsNotExist(err) {
			t.Errorf("file should be gone")
		}
	})
}

func TestDirConcurrent(t *testing.T) {
	root := t.TempDir()
	d := NewDir(root)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := d.WriteFile(ctx, fmt.Sprintf("p/T%d.java", i), []byte("x")); err != nil {
				t.Errorf("WriteFile() error = %v", err)
			}
			if err := d.WriteFile(ctx, "p/Shared.java", []byte(fmt.Sprint(i))); err != nil {
				t.Errorf("WriteFile() shared error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	entries, err := os.ReadDir(filepath.Join(root, "p"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 21 {
		t.Errorf("directory has %d entries, want 21", len(entries))
	}
}
