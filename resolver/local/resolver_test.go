package local_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/resolver/local"
)

func TestLocalResolver(t *testing.T) {
	ctx := t.Context()
	root := t.TempDir()

	if err := os.MkdirAll(filepath.Join(root, "lib"), 0o755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "lib", "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "b.txt"), []byte("world!"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	lr, err := local.NewLocalResolver(root)
	if err != nil {
		t.Fatalf("NewLocalResolver failed: %v", err)
	}

	names, err := lr.List(ctx, "/")
	if err != nil || !slices.Equal(names, []string{"b.txt", "lib"}) {
		t.Errorf("List = %v, %v", names, err)
	}

	stat, err := lr.Stat(ctx, "/lib")
	if err != nil || !stat.IsDir() {
		t.Errorf("Stat dir = %+v, %v", stat, err)
	}

	stat, err = lr.Stat(ctx, "/b.txt")
	if err != nil || stat.IsDir() || stat.Size != 6 {
		t.Errorf("Stat file = %+v, %v", stat, err)
	}

	content, err := lr.ReadAll(ctx, "lib/a.txt")
	if err != nil || string(content) != "hello" {
		t.Errorf("ReadAll = %q, %v", content, err)
	}

	if _, err := lr.Stat(ctx, "/../../etc/passwd"); !errors.Is(err, data.ENOENT) {
		t.Errorf("escaping path should stay inside root, got %v", err)
	}

	if _, err := local.NewLocalResolver(filepath.Join(root, "b.txt")); !errors.Is(err, data.ENOTDIR) {
		t.Errorf("expected ENOTDIR for file root, got %v", err)
	}
}
