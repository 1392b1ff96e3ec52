package apkicons

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/apkicons/internal/restree"
	"github.com/jward/apkicons/internal/source"
)

func TestReplaceResource_FromFile(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t, "res/mipmap-hdpi/ic_launcher.png")
	m := newTestModel(t, tree, testScopes())
	idx := iconAt(t, m, tree, "res/mipmap-hdpi/ic_launcher.png")

	file := filepath.Join(t.TempDir(), "new.png")
	require.NoError(t, os.WriteFile(file, []byte("replacement"), 0o644))
	require.NoError(t, m.ReplaceResource(idx, file))

	h, _ := m.MapToSource(idx)
	data, err := tree.ContentOf(h)
	require.NoError(t, err)
	assert.Equal(t, []byte("replacement"), data)

	err = m.ReplaceResource(idx, filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEdits_RejectNonIconRows(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t, "res/mipmap-hdpi/ic_launcher.png", "res/drawable/tv_banner.png")
	m := newTestModel(t, tree, testScopes())
	events := watchEvents(t, m)

	for _, idx := range []Index{
		{},
		appIndex(m),
		activitiesIndex(m),
		m.Index(0, 0, activitiesIndex(m)),
	} {
		assert.ErrorIs(t, m.ReplaceResourceData(idx, []byte("x")), ErrInvalidIndex)
		assert.ErrorIs(t, m.RemoveResource(idx), ErrInvalidIndex)
	}
	assert.Empty(t, events.events)
	assert.Equal(t, 2, m.Len())
}

func TestRemoveResource_PrunesThroughNotification(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t, "res/mipmap-hdpi/ic_launcher.png", "res/mipmap-xhdpi/ic_launcher.png")
	m := newTestModel(t, tree, testScopes())
	events := watchEvents(t, m)

	require.NoError(t, m.RemoveResource(iconAt(t, m, tree, "res/mipmap-hdpi/ic_launcher.png")))

	assert.Equal(t, []string{`rows-removed "Application" 0..0`}, events.events)
	assert.Equal(t, []string{"res/mipmap-xhdpi/ic_launcher.png"}, childPaths(m, appIndex(m)))
	_, ok := tree.Lookup("res/mipmap-hdpi/ic_launcher.png")
	assert.False(t, ok)
}

// failingSource rejects every mutation.
type failingSource struct {
	*restree.Tree
}

func (failingSource) WriteContent(string, []byte) error { return source.ErrNotFound }
func (failingSource) Remove(string) error               { return source.ErrNotFound }

func TestEdits_SourceFailureLeavesProjection(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t, "res/mipmap-hdpi/ic_launcher.png")
	m := newTestModel(t, failingSource{tree}, testScopes())
	events := watchEvents(t, m)
	idx := iconAt(t, m, tree, "res/mipmap-hdpi/ic_launcher.png")

	assert.ErrorIs(t, m.RemoveResource(idx), source.ErrNotFound)
	assert.ErrorIs(t, m.ReplaceResourceData(idx, nil), source.ErrNotFound)
	assert.Empty(t, events.events)
	assert.Equal(t, 1, m.Len())
}

func TestRemoveRows(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t,
		"res/mipmap-hdpi/ic_launcher.png",
		"res/mipmap-xhdpi/ic_launcher.png",
		"res/mipmap-hdpi/ic_launcher_round.png",
	)
	m := newTestModel(t, tree, testScopes())

	require.NoError(t, m.RemoveRows(0, 2, appIndex(m)))
	assert.Equal(t, []string{"res/mipmap-hdpi/ic_launcher_round.png"}, childPaths(m, appIndex(m)))

	assert.ErrorIs(t, m.RemoveRows(0, 1, Index{}), ErrInvalidIndex)
	assert.ErrorIs(t, m.RemoveRows(0, 5, appIndex(m)), ErrInvalidIndex)
	assert.Equal(t, 1, m.Len())
}

func TestReplaceApplicationIcons(t *testing.T) {
	t.Parallel()
	tree := restree.New()
	require.NoError(t, tree.WriteContent("res/mipmap-mdpi/ic_launcher.png", pngBytes(t, 48, 48)))
	require.NoError(t, tree.WriteContent("res/mipmap-xhdpi/ic_launcher.png", []byte("not an image")))
	require.NoError(t, tree.WriteContent("res/mipmap-anydpi-v26/ic_launcher.xml", []byte("<adaptive-icon/>")))
	require.NoError(t, tree.WriteContent("res/mipmap-hdpi/ic_launcher_round.webp", []byte("webp")))
	require.NoError(t, tree.WriteContent("res/drawable/tv_banner.png", []byte("banner")))
	m := newTestModel(t, tree, testScopes())
	events := watchEvents(t, m)

	src := filepath.Join(t.TempDir(), "src.png")
	require.NoError(t, os.WriteFile(src, pngBytes(t, 64, 32), 0o644))

	report, err := m.ReplaceApplicationIcons(src)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "res/mipmap-hdpi/ic_launcher_round.webp")
	assert.Equal(t, ReplaceReport{
		Written: []string{"res/mipmap-mdpi/ic_launcher.png", "res/mipmap-xhdpi/ic_launcher.png"},
		Skipped: []string{"res/mipmap-anydpi-v26/ic_launcher.xml"},
		Failed:  []string{"res/mipmap-hdpi/ic_launcher_round.webp"},
	}, report)

	sizeOf := func(p string) image.Point {
		h, ok := tree.Lookup(p)
		require.True(t, ok)
		data, err := tree.ContentOf(h)
		require.NoError(t, err)
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err, p)
		return image.Pt(cfg.Width, cfg.Height)
	}
	assert.Equal(t, image.Pt(48, 48), sizeOf("res/mipmap-mdpi/ic_launcher.png"))
	assert.Equal(t, image.Pt(96, 96), sizeOf("res/mipmap-xhdpi/ic_launcher.png"))

	content := func(p string) []byte {
		h, _ := tree.Lookup(p)
		data, _ := tree.ContentOf(h)
		return data
	}
	assert.Equal(t, []byte("<adaptive-icon/>"), content("res/mipmap-anydpi-v26/ic_launcher.xml"))
	assert.Equal(t, []byte("webp"), content("res/mipmap-hdpi/ic_launcher_round.webp"))
	assert.Equal(t, []byte("banner"), content("res/drawable/tv_banner.png"))

	assert.Equal(t, []string{
		`data-changed "Application" 1..1`,
		`data-changed "Application" 2..2`,
	}, events.events)
	assert.Equal(t, 4, m.RowCount(appIndex(m)))
}

func TestReplaceApplicationIcons_AllWritten(t *testing.T) {
	t.Parallel()
	tree := restree.New()
	require.NoError(t, tree.WriteContent("res/mipmap-hdpi/ic_launcher.png", pngBytes(t, 72, 72)))
	require.NoError(t, tree.WriteContent("res/mipmap-hdpi/ic_launcher_round.png", pngBytes(t, 72, 72)))
	m := newTestModel(t, tree, testScopes())

	src := filepath.Join(t.TempDir(), "src.png")
	require.NoError(t, os.WriteFile(src, pngBytes(t, 512, 512), 0o644))
	report, err := m.ReplaceApplicationIcons(src)
	require.NoError(t, err)
	assert.Len(t, report.Written, 2)
	assert.Empty(t, report.Failed)

	img, err := m.Icon()
	require.NoError(t, err)
	assert.Equal(t, image.Pt(72, 72), img.Bounds().Size())
}

func TestReplaceApplicationIcons_BadInput(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t, "res/mipmap-hdpi/ic_launcher.png")
	m := newTestModel(t, tree, testScopes())

	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o644))
	report, err := m.ReplaceApplicationIcons(bad)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Empty(t, report.Written)
	_, err = m.ReplaceApplicationIcons(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
