package apkicons

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_DisplayOrder(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t,
		"res/drawable/tv_banner.png",
		"res/mipmap-hdpi/ic_launcher_round.png",
		"res/mipmap-hdpi/ic_launcher.png",
	)
	m := newTestModel(t, tree, testScopes())

	snap := m.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, IconRecord{
		Scope: "Application", Kind: "application", Type: "Icon",
		Path: "res/mipmap-hdpi/ic_launcher.png", Caption: "hdpi", Hash: testHash("res/mipmap-hdpi/ic_launcher.png"),
	}, snap[0])
	assert.Equal(t, "Round Icon", snap[1].Type)
	assert.Equal(t, ".TvActivity", snap[2].Scope)
	assert.Equal(t, "activity", snap[2].Kind)
	assert.Equal(t, "Default", snap[2].Caption)
}

func TestDiffSnapshots(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t,
		"res/mipmap-hdpi/ic_launcher.png",
		"res/mipmap-xhdpi/ic_launcher.png",
		"res/drawable/tv_banner.png",
	)
	m := newTestModel(t, tree, testScopes())
	before := m.Snapshot()
	assert.True(t, DiffSnapshots(before, m.Snapshot()).Empty())

	require.NoError(t, tree.WriteContent("res/mipmap-hdpi/ic_launcher.png", []byte("v2")))
	require.NoError(t, tree.Remove("res/drawable/tv_banner.png"))
	require.NoError(t, tree.WriteContent("res/mipmap-hdpi/ic_launcher_round.png", nil))

	d := DiffSnapshots(before, m.Snapshot())
	require.Len(t, d.Added, 1)
	assert.Equal(t, "res/mipmap-hdpi/ic_launcher_round.png", d.Added[0].Path)
	require.Len(t, d.Removed, 1)
	assert.Equal(t, "res/drawable/tv_banner.png", d.Removed[0].Path)
	require.Len(t, d.Changed, 1)
	assert.Equal(t, "res/mipmap-hdpi/ic_launcher.png", d.Changed[0].Path)
	assert.False(t, d.Empty())
}

func TestSaveAndLatestSnapshot(t *testing.T) {
	t.Parallel()
	s, err := OpenStore(filepath.Join(t.TempDir(), "snap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tree := newTestTree(t, "res/mipmap-hdpi/ic_launcher.png", "res/drawable/tv_banner.png")
	m := newTestModel(t, tree, testScopes())

	_, ok, err := LatestSnapshot(s, "/apk")
	require.NoError(t, err)
	assert.False(t, ok)

	id, err := SaveSnapshot(s, "/apk", "first", m)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, ok, err := LatestSnapshot(s, "/apk")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, m.Snapshot(), got)

	stored, err := s.SnapshotByID(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Application", ".TvActivity", ".Settings"}, stored.Scopes)
}

func TestOpenStore_InvalidPath(t *testing.T) {
	t.Parallel()
	_, err := OpenStore("/nonexistent/dir/snap.db")
	require.Error(t, err)
}
