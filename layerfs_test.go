package layerfs_test

import (
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/mwantia/layerfs"
	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/log"
)

func newTestFS(t *testing.T, opts ...layerfs.Option) *layerfs.FileSystem {
	t.Helper()

	fs, err := layerfs.New(append([]layerfs.Option{layerfs.WithLogger(log.Discard())}, opts...)...)
	if err != nil {
		t.Fatalf("failed to create file system: %v", err)
	}
	return fs
}

func expectCode(t *testing.T, err error, code data.Errno) {
	t.Helper()

	if !errors.Is(err, code) {
		t.Errorf("expected %s, got %v", code, err)
	}
}

func TestFileSystem_WriteReadFile(t *testing.T) {
	fs := newTestFS(t)

	if err := fs.WriteFileString("/hello.txt", "hello"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	content, err := fs.ReadFile("/hello.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("ReadFile = %q, want %q", content, "hello")
	}

	content[0] = 'j'
	if text, _ := fs.ReadFileString("/hello.txt"); text != "hello" {
		t.Errorf("content changed through returned slice: %q", text)
	}

	st, err := fs.Stat("/hello.txt")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !st.IsFile() || st.Size != 5 || st.Nlink != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
	if st.Mode != data.ModeFile|data.DefaultFileMode {
		t.Errorf("mode = %s", st.Mode)
	}

	if err := fs.WriteFileString("/hello.txt", "hi"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if text, _ := fs.ReadFileString("/hello.txt"); text != "hi" {
		t.Errorf("ReadFile after overwrite = %q", text)
	}

	expectCode(t, fs.WriteFileString("/missing/a.txt", "x"), data.ENOENT)
	expectCode(t, fs.WriteFileString("/", "x"), data.EPERM)

	_, err = fs.ReadFile("/missing.txt")
	expectCode(t, err, data.ENOENT)

	if err := fs.Mkdir("/dir"); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	_, err = fs.ReadFile("/dir")
	expectCode(t, err, data.EISDIR)
	expectCode(t, fs.WriteFileString("/dir", "x"), data.EISDIR)
	expectCode(t, fs.WriteFileString("/hello.txt/x", "x"), data.ENOTDIR)
}

func TestFileSystem_Mkdir(t *testing.T) {
	fs := newTestFS(t)

	if err := fs.Mkdir("/a"); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	expectCode(t, fs.Mkdir("/a"), data.EEXIST)
	expectCode(t, fs.Mkdir("/x/y"), data.ENOENT)

	st, err := fs.Stat("/a")
	if err != nil || !st.IsDirectory() {
		t.Fatalf("Stat dir = %+v, %v", st, err)
	}
	if st.Mode != data.ModeDir|data.DefaultDirMode {
		t.Errorf("mode = %s", st.Mode)
	}
}

func TestFileSystem_Mkdirp(t *testing.T) {
	fs := newTestFS(t)

	if err := fs.Mkdirp("/p/q/r"); err != nil {
		t.Fatalf("Mkdirp failed: %v", err)
	}
	for _, path := range []string{"/p", "/p/q", "/p/q/r"} {
		if st, err := fs.Stat(path); err != nil || !st.IsDirectory() {
			t.Errorf("Stat(%s) = %+v, %v", path, st, err)
		}
	}

	before, _ := fs.Stat("/p/q")
	if err := fs.Mkdirp("/p/q/r"); err != nil {
		t.Fatalf("second Mkdirp failed: %v", err)
	}
	after, _ := fs.Stat("/p/q")
	if !before.ModifyTime.Equal(after.ModifyTime) || !before.ChangeTime.Equal(after.ChangeTime) {
		t.Errorf("second Mkdirp modified the tree: %v -> %v", before.ModifyTime, after.ModifyTime)
	}

	if err := fs.WriteFileString("/p/file", "x"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	expectCode(t, fs.Mkdirp("/p/file"), data.EEXIST)
	expectCode(t, fs.Mkdirp("/p/file/sub"), data.ENOTDIR)
}

func TestFileSystem_Rmdir(t *testing.T) {
	fs := newTestFS(t, layerfs.WithFiles(layerfs.FileSet{
		"/full/file.txt": "x",
		"/empty":         &layerfs.Directory{},
	}))

	expectCode(t, fs.Rmdir("/full"), data.ENOTEMPTY)
	expectCode(t, fs.Rmdir("/full/file.txt"), data.ENOTDIR)
	expectCode(t, fs.Rmdir("/"), data.EPERM)
	expectCode(t, fs.Rmdir("/missing"), data.ENOENT)

	if err := fs.Rmdir("/empty"); err != nil {
		t.Fatalf("Rmdir failed: %v", err)
	}
	if fs.Exists("/empty") {
		t.Errorf("directory still exists")
	}
}

func TestFileSystem_Rimraf(t *testing.T) {
	fs := newTestFS(t, layerfs.WithFiles(layerfs.FileSet{
		"/a/b/c.txt": "c",
		"/a/d.txt":   "d",
		"/a/e":       &layerfs.Directory{},
		"/a/l":       &layerfs.Symlink{Target: "/keep"},
		"/keep/f":    "f",
	}))

	if err := fs.Rimraf("/a"); err != nil {
		t.Fatalf("Rimraf failed: %v", err)
	}
	if fs.Exists("/a") {
		t.Errorf("tree still exists")
	}
	if text, err := fs.ReadFileString("/keep/f"); err != nil || text != "f" {
		t.Errorf("symlink target was removed: %q, %v", text, err)
	}

	if err := fs.Rimraf("/missing"); err != nil {
		t.Errorf("Rimraf on missing path = %v", err)
	}
}

func TestFileSystem_HardLink(t *testing.T) {
	fs := newTestFS(t)

	if err := fs.WriteFileString("/x", "one"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := fs.Link("/x", "/y"); err != nil {
		t.Fatalf("Link failed: %v", err)
	}

	sx, _ := fs.Stat("/x")
	sy, _ := fs.Stat("/y")
	if sx.Ino != sy.Ino || sx.Dev != sy.Dev || sy.Nlink != 2 {
		t.Errorf("links differ: %+v / %+v", sx, sy)
	}

	if err := fs.WriteFileString("/x", "two"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if text, _ := fs.ReadFileString("/y"); text != "two" {
		t.Errorf("ReadFile(/y) = %q, want %q", text, "two")
	}

	if err := fs.Unlink("/x"); err != nil {
		t.Fatalf("Unlink failed: %v", err)
	}
	if text, _ := fs.ReadFileString("/y"); text != "two" {
		t.Errorf("ReadFile(/y) after unlink = %q", text)
	}
	if st, _ := fs.Stat("/y"); st.Nlink != 1 {
		t.Errorf("nlink = %d, want 1", st.Nlink)
	}

	if err := fs.Unlink("/y"); err != nil {
		t.Fatalf("Unlink failed: %v", err)
	}
	if fs.Exists("/y") {
		t.Errorf("node still reachable")
	}

	if err := fs.Mkdir("/dir"); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	expectCode(t, fs.Link("/dir", "/dir2"), data.EPERM)
	expectCode(t, fs.Unlink("/dir"), data.EISDIR)
	expectCode(t, fs.Unlink("/nothing"), data.ENOENT)

	if err := fs.WriteFileString("/z", "z"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	expectCode(t, fs.Link("/z", "/dir"), data.EEXIST)
}

func TestFileSystem_LinkFollowsSymlink(t *testing.T) {
	fs := newTestFS(t, layerfs.WithFiles(layerfs.FileSet{
		"/target": "data",
		"/sym":    &layerfs.Symlink{Target: "/target"},
	}))

	if err := fs.Link("/sym", "/hard"); err != nil {
		t.Fatalf("Link failed: %v", err)
	}

	st, err := fs.Lstat("/hard")
	if err != nil {
		t.Fatalf("Lstat failed: %v", err)
	}
	if !st.IsFile() {
		t.Errorf("Lstat(/hard) mode = %v, want a regular file", st.Mode)
	}
	target, _ := fs.Stat("/target")
	if st.Ino != target.Ino || st.Nlink != 2 {
		t.Errorf("/hard is not a link of /target: %+v / %+v", st, target)
	}
	if sym, _ := fs.Lstat("/sym"); sym.Nlink != 1 {
		t.Errorf("symlink nlink = %d, want 1", sym.Nlink)
	}
}

func TestFileSystem_Symlink(t *testing.T) {
	fs := newTestFS(t, layerfs.WithFiles(layerfs.FileSet{
		"/dir/f": "target",
	}))

	if err := fs.Symlink("f", "/dir/link"); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}
	if err := fs.Symlink("/dir", "/d"); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	if text, err := fs.ReadFileString("/dir/link"); err != nil || text != "target" {
		t.Errorf("ReadFile through relative link = %q, %v", text, err)
	}
	if text, err := fs.ReadFileString("/d/link"); err != nil || text != "target" {
		t.Errorf("ReadFile through two links = %q, %v", text, err)
	}

	if target, err := fs.Readlink("/dir/link"); err != nil || target != "f" {
		t.Errorf("Readlink = %q, %v", target, err)
	}
	if real, err := fs.Realpath("/d/link"); err != nil || real != "/dir/f" {
		t.Errorf("Realpath = %q, %v", real, err)
	}

	st, err := fs.Lstat("/dir/link")
	if err != nil || !st.IsSymlink() || st.Size != 1 {
		t.Errorf("Lstat = %+v, %v", st, err)
	}

	_, err = fs.Readlink("/dir/f")
	expectCode(t, err, data.EINVAL)

	if err := fs.Symlink("/nowhere", "/dangling"); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}
	if !fs.Exists("/dangling") {
		t.Errorf("dangling symlink should exist")
	}
	_, err = fs.Stat("/dangling")
	expectCode(t, err, data.ENOENT)

	expectCode(t, fs.Symlink("/x", "/dir/f"), data.EEXIST)
	expectCode(t, fs.Symlink("/x", "/"), data.EPERM)
}

func TestFileSystem_SymlinkLoop(t *testing.T) {
	fs := newTestFS(t)

	if err := fs.Symlink("/b", "/a"); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}
	if err := fs.Symlink("/a", "/b"); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	_, err := fs.ReadFile("/a")
	expectCode(t, err, data.ELOOP)
	_, err = fs.Stat("/b/x")
	expectCode(t, err, data.ELOOP)
	_, err = fs.Realpath("/a")
	expectCode(t, err, data.ELOOP)

	if st, err := fs.Lstat("/a"); err != nil || !st.IsSymlink() {
		t.Errorf("Lstat on loop = %+v, %v", st, err)
	}

	const length = 30
	for i := range length {
		if err := fs.Symlink(fmt.Sprintf("/c%d", (i+1)%length), fmt.Sprintf("/c%d", i)); err != nil {
			t.Fatalf("Symlink failed: %v", err)
		}
	}
	_, err = fs.ReadFile("/c0")
	expectCode(t, err, data.ELOOP)

	short := newTestFS(t, layerfs.WithMaxSymlinkDepth(2))
	if err := short.WriteFileString("/f", "x"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	for i, target := range []string{"/f", "/s0", "/s1"} {
		if err := short.Symlink(target, fmt.Sprintf("/s%d", i)); err != nil {
			t.Fatalf("Symlink failed: %v", err)
		}
	}
	if _, err := short.ReadFile("/s1"); err != nil {
		t.Errorf("two hops should resolve: %v", err)
	}
	_, err = short.ReadFile("/s2")
	expectCode(t, err, data.ELOOP)
}

func TestFileSystem_Rename(t *testing.T) {
	fs := newTestFS(t, layerfs.WithFiles(layerfs.FileSet{
		"/src/file.txt":   "content",
		"/dst/other.txt":  "other",
		"/full/inner.txt": "x",
		"/empty":          &layerfs.Directory{},
	}))

	before, _ := fs.Stat("/src/file.txt")
	if err := fs.Rename("/src/file.txt", "/dst/moved.txt"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	after, err := fs.Stat("/dst/moved.txt")
	if err != nil {
		t.Fatalf("Stat after rename failed: %v", err)
	}
	if before.Ino != after.Ino || after.Nlink != 1 {
		t.Errorf("rename changed identity: %+v -> %+v", before, after)
	}
	if fs.Exists("/src/file.txt") {
		t.Errorf("source still exists")
	}

	expectCode(t, fs.Rename("/src", "/full"), data.ENOTEMPTY)
	expectCode(t, fs.Rename("/dst/moved.txt", "/empty"), data.EISDIR)
	expectCode(t, fs.Rename("/src", "/dst/other.txt"), data.ENOTDIR)
	expectCode(t, fs.Rename("/full", "/full/sub"), data.EINVAL)
	expectCode(t, fs.Rename("/missing", "/x"), data.ENOENT)
	expectCode(t, fs.Rename("/", "/x"), data.EPERM)

	if err := fs.Rename("/src", "/empty"); err != nil {
		t.Fatalf("Rename onto empty directory failed: %v", err)
	}
	if fs.Exists("/src") {
		t.Errorf("source directory still exists")
	}

	if err := fs.Rename("/dst/moved.txt", "/dst/other.txt"); err != nil {
		t.Fatalf("Rename over file failed: %v", err)
	}
	if text, _ := fs.ReadFileString("/dst/other.txt"); text != "content" {
		t.Errorf("replaced file = %q", text)
	}
	names, _ := fs.Readdir("/dst")
	if !slices.Equal(names, []string{"other.txt"}) {
		t.Errorf("Readdir = %v", names)
	}
}

func TestFileSystem_RenameCaseOnly(t *testing.T) {
	fs := newTestFS(t, layerfs.WithIgnoreCase(), layerfs.WithFiles(layerfs.FileSet{
		"/Dir/file.txt": "content",
	}))

	before, _ := fs.Stat("/dir")
	if err := fs.Rename("/Dir", "/DIR"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	names, _ := fs.Readdir("/")
	if !slices.Equal(names, []string{"DIR"}) {
		t.Errorf("Readdir = %v, want [DIR]", names)
	}
	after, _ := fs.Stat("/dir")
	if before.Ino != after.Ino || before.Nlink != after.Nlink {
		t.Errorf("rename changed identity: %+v -> %+v", before, after)
	}
	if text, err := fs.ReadFileString("/dIr/FILE.txt"); err != nil || text != "content" {
		t.Errorf("ReadFile = %q, %v", text, err)
	}
	if real, _ := fs.Realpath("/dir/FILE.TXT"); real != "/DIR/file.txt" {
		t.Errorf("Realpath = %q", real)
	}
}

func TestFileSystem_Cwd(t *testing.T) {
	fs := newTestFS(t, layerfs.WithCwd("/home/user"))

	if fs.Cwd() != "/home/user" {
		t.Fatalf("Cwd = %q", fs.Cwd())
	}
	if err := fs.WriteFileString("notes.txt", "n"); err != nil {
		t.Fatalf("relative WriteFile failed: %v", err)
	}
	if !fs.Exists("/home/user/notes.txt") {
		t.Errorf("relative path not resolved against cwd")
	}

	if err := fs.Pushd(".."); err != nil {
		t.Fatalf("Pushd failed: %v", err)
	}
	if fs.Cwd() != "/home" {
		t.Errorf("Cwd after Pushd = %q", fs.Cwd())
	}
	if text, _ := fs.ReadFileString("user/notes.txt"); text != "n" {
		t.Errorf("ReadFile = %q", text)
	}
	if err := fs.Popd(); err != nil {
		t.Fatalf("Popd failed: %v", err)
	}
	if fs.Cwd() != "/home/user" {
		t.Errorf("Cwd after Popd = %q", fs.Cwd())
	}

	expectCode(t, fs.Chdir("notes.txt"), data.ENOTDIR)
	expectCode(t, fs.Pushd("/missing"), data.ENOENT)
	if fs.Cwd() != "/home/user" {
		t.Errorf("failed Pushd changed cwd to %q", fs.Cwd())
	}
}

func TestFileSystem_Clock(t *testing.T) {
	fixed := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	fs := newTestFS(t, layerfs.WithTime(fixed))

	if err := fs.WriteFileString("/f", "x"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	st, _ := fs.Stat("/f")
	if !st.BirthTime.Equal(fixed) || !st.ModifyTime.Equal(fixed) {
		t.Errorf("timestamps = %v / %v, want %v", st.BirthTime, st.ModifyTime, fixed)
	}

	logical := newTestFS(t)
	t1 := logical.Time()
	t2 := logical.Time()
	if !t2.After(t1) {
		t.Errorf("logical clock does not advance: %v, %v", t1, t2)
	}

	later := fixed.Add(time.Hour)
	if err := logical.SetTime(later); err != nil {
		t.Fatalf("SetTime failed: %v", err)
	}
	if got := logical.Time(); !got.Equal(later) {
		t.Errorf("Time = %v, want %v", got, later)
	}
}

func TestFileSystem_Utimes(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.WriteFileString("/f", "x"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	atime := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	mtime := atime.Add(time.Minute)
	if err := fs.Utimes("/f", atime, mtime); err != nil {
		t.Fatalf("Utimes failed: %v", err)
	}

	st, _ := fs.Stat("/f")
	if !st.AccessTime.Equal(atime) || !st.ModifyTime.Equal(mtime) {
		t.Errorf("times = %v / %v", st.AccessTime, st.ModifyTime)
	}

	expectCode(t, fs.Utimes("/f", time.Time{}, mtime), data.EINVAL)
	expectCode(t, fs.Utimes("/missing", atime, mtime), data.ENOENT)
}

func TestFileSystem_Metadata(t *testing.T) {
	fs := newTestFS(t, layerfs.WithMeta(map[string]any{"owner": "root"}))

	if value, ok := fs.Meta().Get("owner"); !ok || value != "root" {
		t.Errorf("Meta owner = %v, %v", value, ok)
	}

	if err := fs.WriteFileString("/f", "x"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	meta, err := fs.Filemeta("/f")
	if err != nil {
		t.Fatalf("Filemeta failed: %v", err)
	}
	meta.Set(data.MetadataContentType, "text/plain")

	if err := fs.Snapshot(); err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	meta, err = fs.Filemeta("/f")
	if err != nil {
		t.Fatalf("Filemeta failed: %v", err)
	}
	if got := meta.GetString(data.MetadataContentType, ""); got != "text/plain" {
		t.Errorf("inherited content type = %q", got)
	}
	meta.Set(data.MetadataContentType, "application/json")

	base, err := fs.ShadowRoot().Filemeta("/f")
	if err != nil {
		t.Fatalf("Filemeta on snapshot failed: %v", err)
	}
	if got := base.GetString(data.MetadataContentType, ""); got != "text/plain" {
		t.Errorf("snapshot content type = %q, want text/plain", got)
	}

	fs.Meta().Set("owner", "user")
	if value, _ := fs.ShadowRoot().Meta().Get("owner"); value != "root" {
		t.Errorf("snapshot owner = %v", value)
	}
}

func TestFileSystem_InvalidPath(t *testing.T) {
	fs := newTestFS(t)

	_, err := fs.ReadFile("/a/*.txt")
	expectCode(t, err, data.ENOENT)
	expectCode(t, fs.WriteFileString("/a|b", "x"), data.ENOENT)

	var pe *data.PathError
	if !errors.As(err, &pe) || pe.Op == "" {
		t.Errorf("expected annotated PathError, got %v", err)
	}
}
