package layerfs_test

import (
	"testing"

	"github.com/mwantia/layerfs"
	"github.com/mwantia/layerfs/data"
)

func TestApply_Entries(t *testing.T) {
	fs := newTestFS(t, layerfs.WithFiles(layerfs.FileSet{
		"/etc": &layerfs.Directory{
			Meta: map[string]any{"owner": "root"},
			Files: layerfs.FileSet{
				"hosts":    "127.0.0.1 localhost",
				"raw.bin":  []byte{0, 1, 2},
				"conf.d":   &layerfs.Directory{},
				"resolv":   &layerfs.File{Data: []byte("nameserver"), Meta: map[string]any{data.MetadataContentType: "text/plain"}},
				"hostname": &layerfs.Symlink{Target: "hosts"},
				"alias":    &layerfs.Link{Path: "hosts"},
			},
		},
	}))

	if text, err := fs.ReadFileString("/etc/hosts"); err != nil || text != "127.0.0.1 localhost" {
		t.Errorf("hosts = %q, %v", text, err)
	}
	if content, err := fs.ReadFile("/etc/raw.bin"); err != nil || len(content) != 3 || content[2] != 2 {
		t.Errorf("raw.bin = %v, %v", content, err)
	}
	if st, err := fs.Stat("/etc/conf.d"); err != nil || !st.IsDirectory() {
		t.Errorf("conf.d = %+v, %v", st, err)
	}

	if target, err := fs.Readlink("/etc/hostname"); err != nil || target != "hosts" {
		t.Errorf("Readlink = %q, %v", target, err)
	}
	if text, _ := fs.ReadFileString("/etc/hostname"); text != "127.0.0.1 localhost" {
		t.Errorf("read through symlink = %q", text)
	}

	st, err := fs.Stat("/etc/alias")
	if err != nil || st.Nlink != 2 {
		t.Errorf("alias = %+v, %v", st, err)
	}

	meta, err := fs.Filemeta("/etc/resolv")
	if err != nil {
		t.Fatalf("Filemeta failed: %v", err)
	}
	if got := meta.GetString(data.MetadataContentType, ""); got != "text/plain" {
		t.Errorf("content type = %q", got)
	}
	meta, _ = fs.Filemeta("/etc")
	if value, _ := meta.Get("owner"); value != "root" {
		t.Errorf("directory owner = %v", value)
	}
}

func TestApply_Remove(t *testing.T) {
	fs := newTestFS(t, layerfs.WithFiles(layerfs.FileSet{
		"/a/x.txt": "x",
		"/b/y.txt": "y",
		"/c.txt":   "c",
	}))

	err := fs.Apply("/", layerfs.FileSet{
		"a":     nil,
		"b":     &layerfs.Rmdir{},
		"c.txt": &layerfs.Unlink{},
		"d":     nil,
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	for _, path := range []string{"/a", "/b", "/c.txt"} {
		if fs.Exists(path) {
			t.Errorf("%s still exists", path)
		}
	}
}

func TestApply_RelativeToDir(t *testing.T) {
	fs := newTestFS(t, layerfs.WithCwd("/work"))

	if err := fs.Apply("sub", layerfs.FileSet{"f.txt": "f"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if text, _ := fs.ReadFileString("/work/sub/f.txt"); text != "f" {
		t.Errorf("ReadFile = %q", text)
	}
	if fs.Cwd() != "/work" {
		t.Errorf("Apply changed cwd to %q", fs.Cwd())
	}
}

func TestApply_Errors(t *testing.T) {
	fs := newTestFS(t)

	err := fs.Apply("", layerfs.FileSet{
		"/":       nil,
		"/ok.txt": "ok",
		"/bad":    42,
		"/dangle": &layerfs.Link{Path: "/missing"},
	})
	if err == nil {
		t.Fatalf("expected Apply to fail")
	}
	expectCode(t, err, data.EPERM)
	expectCode(t, err, data.EINVAL)
	expectCode(t, err, data.ENOENT)

	if text, _ := fs.ReadFileString("/ok.txt"); text != "ok" {
		t.Errorf("valid entry was not applied: %q", text)
	}
}
