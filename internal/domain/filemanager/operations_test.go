package filemanager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdit(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "page.html", `<b>Tom & "Jerry"</b>`)

	res, err := f.fm.Edit(context.Background(), "/page.html")
	require.NoError(t, err)
	assert.Equal(t, "/page.html", res.Path)
	assert.Equal(t, "&lt;b&gt;Tom &amp; &#34;Jerry&#34;&lt;/b&gt;", res.Content)
	assert.Equal(t, CodeOK, res.Code)
}

func TestEditErrors(t *testing.T) {
	ctx := context.Background()

	disabled := newFixture(t, func(c *config.Connector) { c.Edit.Enabled = false })
	disabled.write(t, "a.txt", "x")
	fe := requireKind(t, mustFail(disabled.fm.Edit(ctx, "/a.txt")), KindPermissionDenied)
	assert.Equal(t, "No way.", disabled.fm.Status(fe).Error)

	f := newFixture(t, nil)
	_, err := f.fm.Edit(ctx, "/missing.txt")
	requireKind(t, err, KindAccessDenied)

	full := f.write(t, "ro.txt", "x")
	require.NoError(t, os.Chmod(full, 0444))
	_, err = f.fm.Edit(ctx, "/ro.txt")
	requireKind(t, err, KindAccessDenied)
}

func TestSave(t *testing.T) {
	f := newFixture(t, nil)
	full := f.write(t, "page.html", "old")

	content := "&lt;p&gt;new &amp; improved&lt;/p&gt;"
	res, err := f.fm.Save(context.Background(), "/page.html", &content)
	require.NoError(t, err)
	assert.Equal(t, "/page.html", res.Path)

	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "<p>new & improved</p>", string(data))
}

func TestSaveErrors(t *testing.T) {
	f := newFixture(t, nil)
	full := f.write(t, "ro.txt", "keep")
	ctx := context.Background()

	_, err := f.fm.Save(ctx, "/ro.txt", nil)
	fe := requireKind(t, err, KindInvalidInput)
	assert.Equal(t, "File content missing.", f.fm.Status(fe).Error)

	require.NoError(t, os.Chmod(full, 0444))
	content := "changed"
	_, err = f.fm.Save(ctx, "/ro.txt", &content)
	fe = requireKind(t, err, KindAccessDenied)
	assert.Equal(t, "You don't have write permissions on file /ro.txt.", f.fm.Status(fe).Error)

	disabled := newFixture(t, func(c *config.Connector) { c.Edit.Enabled = false })
	disabled.write(t, "a.txt", "x")
	_, err = disabled.fm.Save(ctx, "/a.txt", &content)
	requireKind(t, err, KindPermissionDenied)
}

func TestSymlinkEscapeRejected(t *testing.T) {
	f := newFixture(t, nil)
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("keep"), 0644))
	require.NoError(t, os.Symlink(outside, f.abs("link")))
	ctx := context.Background()

	_, err := f.fm.Edit(ctx, "/link/secret.txt")
	requireKind(t, err, KindOutsideRoot)

	content := "owned"
	_, err = f.fm.Save(ctx, "/link/secret.txt", &content)
	requireKind(t, err, KindOutsideRoot)

	_, err = f.fm.Delete(ctx, "/link/secret.txt")
	requireKind(t, err, KindOutsideRoot)

	f.write(t, "a.txt", "x")
	requireKind(t, mustFail(f.fm.Move(ctx, "/a.txt", "/link", "")), KindOutsideRoot)
	assert.FileExists(t, f.abs("a.txt"))
	assert.NoFileExists(t, filepath.Join(outside, "a.txt"))

	data, err := os.ReadFile(secret)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	d := f.fm.Info(ctx, "/link/secret.txt")
	assert.Equal(t, 1, d.Protected)
}

func TestRename(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "docs/a.txt", "x")

	res, err := f.fm.Rename(context.Background(), "/docs/a.txt", "b.txt")
	require.NoError(t, err)
	assert.Equal(t, "/docs/a.txt", res.OldPath)
	assert.Equal(t, "a.txt", res.OldName)
	assert.Equal(t, "/docs/b.txt", res.NewPath)
	assert.Equal(t, "b.txt", res.NewName)

	assert.NoFileExists(t, f.abs("docs/a.txt"))
	assert.FileExists(t, f.abs("docs/b.txt"))
}

func TestRenameDirectory(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "old/inner.txt", "x")

	res, err := f.fm.Rename(context.Background(), "/old/", "new")
	require.NoError(t, err)
	assert.Equal(t, "old", res.OldName)
	assert.Equal(t, "/new", res.NewPath)
	assert.FileExists(t, f.abs("new/inner.txt"))
}

func TestRenameRootAlwaysFails(t *testing.T) {
	for _, caps := range [][]string{{"rename"}, {}} {
		f := newFixture(t, func(c *config.Connector) { c.Options.Capabilities = caps })
		for _, root := range []string{"/", "", "/."} {
			_, err := f.fm.Rename(context.Background(), root, "x")
			requireKind(t, err, KindRootProtected)
		}
	}
}

func TestRenameErrors(t *testing.T) {
	f := newFixture(t, func(c *config.Connector) {
		c.Security.AllowChangeExtensions = true
		c.Security.UploadPolicy = "DISALLOW_ALL"
		c.Security.UploadRestrictions = []string{"txt"}
	})
	f.write(t, "a.txt", "x")
	f.write(t, "b.txt", "y")
	f.mkdir(t, "dir")
	f.mkdir(t, "d.txt")
	ctx := context.Background()

	fe := requireKind(t, mustFail(f.fm.Rename(ctx, "/a.txt", "b.txt")), KindCollision)
	assert.Equal(t, "A file with the name b.txt already exists.", f.fm.Status(fe).Error)

	fe = requireKind(t, mustFail(f.fm.Rename(ctx, "/a.txt", "d.txt")), KindCollision)
	assert.Equal(t, keyDirExists, fe.Key)

	requireKind(t, mustFail(f.fm.Rename(ctx, "/a.txt", "a.exe")), KindPolicy)
	requireKind(t, mustFail(f.fm.Rename(ctx, "/missing.txt", "c.txt")), KindNotFound)
	requireKind(t, mustFail(f.fm.Rename(ctx, "/a.txt", "../c.txt")), KindInvalidInput)
	requireKind(t, mustFail(f.fm.Rename(ctx, "/../x.txt", "c.txt")), KindOutsideRoot)

	// Directories are not subject to the extension policy.
	_, err := f.fm.Rename(ctx, "/dir", "dir.exe")
	require.NoError(t, err)

	disabled := newFixture(t, func(c *config.Connector) { c.Options.Capabilities = []string{"select"} })
	disabled.write(t, "a.txt", "x")
	requireKind(t, mustFail(disabled.fm.Rename(ctx, "/a.txt", "b.txt")), KindPermissionDenied)
	assert.FileExists(t, disabled.abs("a.txt"))
}

func TestMoveDestination(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		newDir string
		root   string
		want   string
	}{
		{"relative", "/a/b/c.txt", "newdir", "", "/a/b/newdir/"},
		{"absolute", "/a/b/c.txt", "/x/y", "", "/x/y/"},
		{"absolute with root", "/a/c.txt", "/x", "/userfiles//", "/userfiles/x/"},
		{"parent", "/a/b/c.txt", "..", "", "/a/"},
		{"directory source", "/a/b/", "c", "", "/a/c/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, moveDestination(tt.file, tt.newDir, tt.root))
		})
	}
}

func TestMoveRelative(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "a/b/c.txt", "x")

	res, err := f.fm.Move(context.Background(), "/a/b/c.txt", "newdir", "")
	require.NoError(t, err)
	assert.Equal(t, "/a/b/c.txt", res.OldPath)
	assert.Equal(t, "/a/b/newdir/c.txt", res.NewPath)
	assert.Equal(t, "c.txt", res.NewName)
	assert.FileExists(t, f.abs("a/b/newdir/c.txt"))
	assert.NoFileExists(t, f.abs("a/b/c.txt"))
}

func TestMoveAbsolute(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "a/b/c.txt", "x")

	res, err := f.fm.Move(context.Background(), "/a/b/c.txt", "/x/y", "")
	require.NoError(t, err)
	assert.Equal(t, "/x/y/c.txt", res.NewPath)

	info, err := os.Stat(f.abs("x/y"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.FileExists(t, f.abs("x/y/c.txt"))
}

func TestMoveErrors(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "a.txt", "x")
	f.write(t, "dest/a.txt", "taken")
	f.write(t, "plain", "not a dir")
	ctx := context.Background()

	fe := requireKind(t, mustFail(f.fm.Move(ctx, "/a.txt", "/dest", "")), KindCollision)
	assert.Equal(t, "A file with the name /dest/a.txt already exists.", f.fm.Status(fe).Error)

	fe = requireKind(t, mustFail(f.fm.Move(ctx, "/a.txt", "/plain", "")), KindCollision)
	assert.Equal(t, keyFileExists, fe.Key)

	requireKind(t, mustFail(f.fm.Move(ctx, "/", "/dest", "")), KindRootProtected)
	requireKind(t, mustFail(f.fm.Move(ctx, "/a.txt", "/out", "..")), KindOutsideRoot)
	requireKind(t, mustFail(f.fm.Move(ctx, "a.txt", "../out", "")), KindOutsideRoot)
	requireKind(t, mustFail(f.fm.Move(ctx, "/missing.txt", "/dest", "")), KindAccessDenied)

	disabled := newFixture(t, func(c *config.Connector) { c.Options.Capabilities = []string{"select"} })
	disabled.write(t, "a.txt", "x")
	requireKind(t, mustFail(disabled.fm.Move(ctx, "/a.txt", "sub", "")), KindPermissionDenied)
	assert.NoDirExists(t, disabled.abs("sub"))
}

func TestDelete(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "tree/a/b.txt", "x")

	res, err := f.fm.Delete(context.Background(), "/tree/")
	require.NoError(t, err)
	assert.Equal(t, "/tree/", res.Path)
	assert.NoDirExists(t, f.abs("tree"))
}

func TestDeleteErrors(t *testing.T) {
	f := newFixture(t, nil)
	full := f.write(t, "ro.txt", "x")
	require.NoError(t, os.Chmod(full, 0444))
	ctx := context.Background()

	requireKind(t, mustFail(f.fm.Delete(ctx, "/")), KindRootProtected)
	requireKind(t, mustFail(f.fm.Delete(ctx, "/ro.txt")), KindAccessDenied)
	requireKind(t, mustFail(f.fm.Delete(ctx, "/missing")), KindAccessDenied)
	assert.FileExists(t, full)

	disabled := newFixture(t, func(c *config.Connector) { c.Options.Capabilities = []string{"select"} })
	disabled.write(t, "a.txt", "x")
	fe := requireKind(t, mustFail(disabled.fm.Delete(ctx, "/a.txt")), KindPermissionDenied)
	assert.Equal(t, keyNoWay, fe.Key)
	assert.FileExists(t, disabled.abs("a.txt"))
}

func TestAddFolder(t *testing.T) {
	f := newFixture(t, nil)
	f.mkdir(t, "docs")

	res, err := f.fm.AddFolder(context.Background(), "/docs/", "new")
	require.NoError(t, err)
	assert.Equal(t, "/docs/", res.Parent)
	assert.Equal(t, "new", res.Name)

	info, err := os.Stat(f.abs("docs/new"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestAddFolderCollision(t *testing.T) {
	f := newFixture(t, nil)
	full := f.write(t, "docs/taken", "file")
	f.mkdir(t, "docs/dir")
	ctx := context.Background()

	fe := requireKind(t, mustFail(f.fm.AddFolder(ctx, "/docs", "taken")), KindCollision)
	assert.Equal(t, keyFileExists, fe.Key)

	info, err := os.Stat(full)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())

	fe = requireKind(t, mustFail(f.fm.AddFolder(ctx, "/docs", "dir")), KindCollision)
	assert.Equal(t, keyDirExists, fe.Key)

	requireKind(t, mustFail(f.fm.AddFolder(ctx, "/docs", "../../escape")), KindInvalidInput)
	requireKind(t, mustFail(f.fm.AddFolder(ctx, "../", "escape")), KindOutsideRoot)
	requireKind(t, mustFail(f.fm.AddFolder(ctx, "/missing/deeper", "x")), KindIO)
}

// mustFail discards the result of an operation and returns its error.
func mustFail[T any](_ T, err error) error {
	return err
}
