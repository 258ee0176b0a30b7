package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "c.mp4", "a.jpg", "b.png", ".hidden.jpg")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	touch(t, filepath.Join(dir, "sub"), "inner.jpg")

	other := t.TempDir()
	touch(t, other, "target.jpg")
	require.NoError(t, os.Symlink(filepath.Join(other, "target.jpg"), filepath.Join(dir, "link.jpg")))
	require.NoError(t, os.Symlink(other, filepath.Join(dir, "linkdir")))
	require.NoError(t, os.Symlink(filepath.Join(other, "gone.jpg"), filepath.Join(dir, "dangling.jpg")))

	files, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.mp4"),
		filepath.Join(dir, "link.jpg"),
	}, files)
}

func TestDiscover_Missing(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
