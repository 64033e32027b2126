package consul

import (
	"os"
	"slices"
	"testing"
)

func TestBuildKey(t *testing.T) {
	tests := []struct {
		prefix, path, want string
	}{
		{"", "/", ""},
		{"", "/config/app.json", "config/app.json"},
		{"/layerfs/", "/", "layerfs"},
		{"layerfs", "/config/../env/", "layerfs/env"},
	}

	for _, tt := range tests {
		cr, err := NewConsulResolver(&ConsulResolverConfig{Prefix: tt.prefix})
		if err != nil {
			t.Fatalf("NewConsulResolver failed: %v", err)
		}
		if got := cr.buildKey(tt.path); got != tt.want {
			t.Errorf("buildKey(%q, %q) = %q, want %q", tt.prefix, tt.path, got, tt.want)
		}
	}
}

func TestNewConsulResolver_Defaults(t *testing.T) {
	cr, err := NewConsulResolver(nil)
	if err != nil {
		t.Fatalf("NewConsulResolver failed: %v", err)
	}
	if cr.config.Address != "127.0.0.1:8500" {
		t.Errorf("Address = %q", cr.config.Address)
	}
}

func TestConsulResolver(t *testing.T) {
	addr := os.Getenv("LAYERFS_CONSUL_ADDR")
	if addr == "" {
		t.Skip("LAYERFS_CONSUL_ADDR not set")
	}

	ctx := t.Context()
	cr, err := NewConsulResolver(&ConsulResolverConfig{Address: addr, Prefix: "layerfs-test"})
	if err != nil {
		t.Fatalf("NewConsulResolver failed: %v", err)
	}

	if err := cr.Put(ctx, "/dir/a.txt", []byte("alpha")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	names, err := cr.List(ctx, "/")
	if err != nil || !slices.Contains(names, "dir") {
		t.Errorf("List = %v, %v", names, err)
	}

	stat, err := cr.Stat(ctx, "/dir")
	if err != nil || !stat.IsDir() {
		t.Errorf("Stat = %+v, %v", stat, err)
	}

	content, err := cr.ReadAll(ctx, "/dir/a.txt")
	if err != nil || string(content) != "alpha" {
		t.Errorf("ReadAll = %q, %v", content, err)
	}
}
