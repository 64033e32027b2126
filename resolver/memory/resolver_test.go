package memory_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/resolver/memory"
)

func TestMemoryResolver(t *testing.T) {
	ctx := t.Context()
	mr := memory.NewMemoryResolver()
	mr.Put("/src/a.txt", []byte("alpha"))
	mr.Put("/src/lib/b.txt", []byte("beta"))
	mr.Put("/src/lib/c.txt", []byte("gamma"))
	mr.PutDir("/src/empty")

	names, err := mr.List(ctx, "/src")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if want := []string{"a.txt", "empty", "lib"}; !slices.Equal(names, want) {
		t.Errorf("List = %v, want %v", names, want)
	}

	names, err = mr.List(ctx, "/src/empty")
	if err != nil || len(names) != 0 {
		t.Errorf("List empty dir = %v, %v", names, err)
	}

	stat, err := mr.Stat(ctx, "/src/lib")
	if err != nil || !stat.IsDir() {
		t.Errorf("Stat implicit dir = %+v, %v", stat, err)
	}

	stat, err = mr.Stat(ctx, "/src/a.txt")
	if err != nil || stat.IsDir() || stat.Size != 5 {
		t.Errorf("Stat file = %+v, %v", stat, err)
	}

	content, err := mr.ReadAll(ctx, "/src/lib/c.txt")
	if err != nil || string(content) != "gamma" {
		t.Errorf("ReadAll = %q, %v", content, err)
	}

	if _, err := mr.ReadAll(ctx, "/src/lib"); !errors.Is(err, data.EISDIR) {
		t.Errorf("ReadAll dir error = %v", err)
	}
	if _, err := mr.Stat(ctx, "/missing"); !errors.Is(err, data.ENOENT) {
		t.Errorf("Stat missing error = %v", err)
	}
	if _, err := mr.List(ctx, "/src/a.txt"); !errors.Is(err, data.ENOTDIR) {
		t.Errorf("List file error = %v", err)
	}

	mr.Delete("/src/lib")
	if _, err := mr.Stat(ctx, "/src/lib/b.txt"); !errors.Is(err, data.ENOENT) {
		t.Errorf("expected deleted subtree, got %v", err)
	}
}
