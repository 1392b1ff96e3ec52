package apkicons

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/apkicons/internal/manifest"
	"github.com/jward/apkicons/internal/restree"
	"github.com/jward/apkicons/internal/source"
)

// testScopes is an application with an icon and round icon, a TV activity
// with a banner and a settings activity whose icon never resolves.
func testScopes() []*Scope {
	return []*Scope{
		{Kind: manifest.KindApplication, Package: "com.example", Icon: "@mipmap/ic_launcher", RoundIcon: "@mipmap/ic_launcher_round"},
		{Kind: manifest.KindActivity, Package: "com.example", Name: "com.example.TvActivity", Banner: "@drawable/tv_banner"},
		{Kind: manifest.KindActivity, Package: "com.example", Name: "com.example.Settings", Icon: "@drawable/settings"},
	}
}

func newTestTree(t *testing.T, paths ...string) *restree.Tree {
	t.Helper()
	tree := restree.New()
	for _, p := range paths {
		require.NoError(t, tree.WriteContent(p, []byte(p)))
	}
	return tree
}

func newTestModel(t *testing.T, src Source, scopes []*Scope, opts ...Option) *Model {
	t.Helper()
	m, err := New(src, scopes, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

// eventLog records model events as "kind "parent" first..last".
type eventLog struct {
	m      *Model
	events []string
}

func watchEvents(t *testing.T, m *Model) *eventLog {
	t.Helper()
	l := &eventLog{m: m}
	cancel := m.Watch(func(ev Event) {
		l.events = append(l.events, fmt.Sprintf("%s %q %d..%d", ev.Kind, m.Data(ev.Parent), ev.First, ev.Last))
	})
	t.Cleanup(cancel)
	return l
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func appIndex(m *Model) Index {
	return m.Index(RowApplication, 0, Index{})
}

func activitiesIndex(m *Model) Index {
	return m.Index(RowActivities, 0, Index{})
}

// childPaths lists the source paths of the icon rows under parent.
func childPaths(m *Model, parent Index) []string {
	var out []string
	for row := range m.RowCount(parent) {
		out = append(out, m.Data(m.Index(row, ColumnPath, parent)))
	}
	return out
}

func iconAt(t *testing.T, m *Model, tree *restree.Tree, path string) Index {
	t.Helper()
	h, ok := tree.Lookup(path)
	require.True(t, ok, path)
	idx := m.MapFromSource(h)
	require.True(t, idx.IsValid(), path)
	return idx
}

func TestNew_EmptySourceKeepsTopShape(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, restree.New(), testScopes())

	require.Equal(t, 2, m.RowCount(Index{}))
	assert.Equal(t, "Application", m.Data(appIndex(m)))
	assert.Equal(t, "Activities", m.Data(activitiesIndex(m)))
	assert.Equal(t, 0, m.RowCount(appIndex(m)))
	assert.Equal(t, 0, m.RowCount(activitiesIndex(m)))
	assert.False(t, m.Index(2, 0, Index{}).IsValid())
	assert.Equal(t, 3, m.ColumnCount(Index{}))
}

func TestNew_NilSource(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, nil, testScopes())
	assert.Equal(t, 2, m.RowCount(Index{}))
	assert.Equal(t, 0, m.Len())
	assert.ErrorIs(t, m.RemoveResource(appIndex(m)), ErrNoSource)
}

func TestNew_InvalidCacheSize(t *testing.T) {
	t.Parallel()
	_, err := New(restree.New(), nil, WithIconCacheSize(0))
	require.Error(t, err)
}

func TestPopulate_InitialBuild(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t,
		"res/mipmap-hdpi/ic_launcher.png",
		"res/drawable/tv_banner.png",
		"res/drawable/unrelated.png",
	)
	m := newTestModel(t, tree, testScopes())

	app := appIndex(m)
	require.Equal(t, 1, m.RowCount(app))
	assert.Equal(t, []string{"res/mipmap-hdpi/ic_launcher.png"}, childPaths(m, app))

	acts := activitiesIndex(m)
	require.Equal(t, 1, m.RowCount(acts))
	tv := m.Index(0, 0, acts)
	assert.Equal(t, ".TvActivity", m.Data(tv))
	assert.Equal(t, "com.example.TvActivity", m.ActivityNode(tv).Scope().Name)
	assert.Equal(t, []string{"res/drawable/tv_banner.png"}, childPaths(m, tv))

	assert.Equal(t, 2, m.Len())
	require.NoError(t, m.Verify())
}

func TestPopulate_OrdersBySlotThenTree(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t,
		"res/mipmap-xhdpi/ic_launcher_round.png",
		"res/mipmap-xhdpi/ic_launcher.png",
		"res/mipmap-hdpi/ic_launcher_round.png",
		"res/mipmap-hdpi/ic_launcher.png",
	)
	m := newTestModel(t, tree, testScopes())

	app := appIndex(m)
	assert.Equal(t, []string{
		"res/mipmap-hdpi/ic_launcher.png",
		"res/mipmap-xhdpi/ic_launcher.png",
		"res/mipmap-hdpi/ic_launcher_round.png",
		"res/mipmap-xhdpi/ic_launcher_round.png",
	}, childPaths(m, app))
	assert.Equal(t, "Icon", m.Data(m.Index(0, ColumnType, app)))
	assert.Equal(t, "Round Icon", m.Data(m.Index(2, ColumnType, app)))
	assert.Equal(t, "xhdpi", m.Data(m.Index(1, ColumnCaption, app)))
	assert.Equal(t, "res/mipmap-hdpi/ic_launcher.png", m.GetIconPath(app))
}

func TestPopulate_ActivitiesFollowScopeOrder(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t, "res/drawable/settings.png", "res/drawable/tv_banner.png")
	m := newTestModel(t, tree, testScopes())

	acts := activitiesIndex(m)
	require.Equal(t, 2, m.RowCount(acts))
	assert.Equal(t, ".TvActivity", m.Data(m.Index(0, 0, acts)))
	assert.Equal(t, ".Settings", m.Data(m.Index(1, 0, acts)))
}

func TestPopulate_FirstScopeClaimsSharedFile(t *testing.T) {
	t.Parallel()
	scopes := []*Scope{
		{Kind: manifest.KindApplication, Icon: "@drawable/shared"},
		{Kind: manifest.KindActivity, Name: "a.Main", Icon: "@drawable/shared", Banner: "@drawable/shared"},
	}
	tree := newTestTree(t, "res/drawable/shared.png")
	m := newTestModel(t, tree, scopes)

	assert.Equal(t, 1, m.RowCount(appIndex(m)))
	assert.Equal(t, 0, m.RowCount(activitiesIndex(m)))
	assert.Equal(t, 1, m.Len())
}

func TestIndex_ParentAndColumns(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t, "res/drawable/tv_banner.png")
	m := newTestModel(t, tree, testScopes())

	acts := activitiesIndex(m)
	tv := m.Index(0, 0, acts)
	icon := m.Index(0, ColumnType, tv)
	require.True(t, icon.IsValid())

	assert.Equal(t, tv, m.Parent(icon))
	assert.Equal(t, acts, m.Parent(tv))
	assert.False(t, m.Parent(acts).IsValid())
	assert.False(t, m.Parent(Index{}).IsValid())

	assert.Equal(t, "Banner", m.Data(icon))
	assert.Equal(t, "Default", m.GetIconCaption(icon))
	assert.Equal(t, "res/drawable/tv_banner.png", m.Data(icon.Sibling(ColumnPath)))
	assert.Equal(t, "", m.Data(tv.Sibling(ColumnType)))

	got, ok := m.GetIconType(icon)
	require.True(t, ok)
	assert.Equal(t, TypeBanner, got)
	_, ok = m.GetIconType(tv)
	assert.False(t, ok)

	// Only column 0 has children.
	assert.Equal(t, 0, m.RowCount(tv.Sibling(ColumnPath)))
	assert.True(t, m.HasChildren(tv))
	assert.False(t, m.HasChildren(icon))
	assert.False(t, m.Index(0, 3, tv).IsValid())
	assert.False(t, m.Index(1, 0, tv).IsValid())
}

func TestMapping_RoundTrip(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t,
		"res/mipmap-hdpi/ic_launcher.png",
		"res/mipmap-hdpi/ic_launcher_round.png",
		"res/drawable/tv_banner.png",
		"res/drawable/settings.png",
	)
	m := newTestModel(t, tree, testScopes())

	var icons []Index
	for row := range m.RowCount(appIndex(m)) {
		icons = append(icons, m.Index(row, 0, appIndex(m)))
	}
	for a := range m.RowCount(activitiesIndex(m)) {
		act := m.Index(a, 0, activitiesIndex(m))
		for row := range m.RowCount(act) {
			icons = append(icons, m.Index(row, 0, act))
		}
	}
	require.Len(t, icons, 4)
	for _, idx := range icons {
		h, ok := m.MapToSource(idx)
		require.True(t, ok)
		assert.Equal(t, idx, m.MapFromSource(h))
		assert.Equal(t, tree.PathOf(h), m.ResourcePath(idx))
	}

	_, ok := m.MapToSource(appIndex(m))
	assert.False(t, ok)
	_, ok = m.MapToSource(m.Index(0, 0, activitiesIndex(m)))
	assert.False(t, ok)

	unrelated, _ := tree.Lookup("res/drawable")
	assert.False(t, m.MapFromSource(unrelated).IsValid())
	assert.Equal(t, "", m.ResourcePath(appIndex(m)))
}

func TestSetScopes_Rebuilds(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t, "res/mipmap-hdpi/ic_launcher.png", "res/drawable/tv_banner.png")
	m := newTestModel(t, tree, testScopes())
	events := watchEvents(t, m)

	m.SetScopes([]*Scope{{Kind: manifest.KindApplication, Banner: "@drawable/tv_banner"}})

	assert.Equal(t, []string{`reset "" 0..0`}, events.events)
	assert.Equal(t, []string{"res/drawable/tv_banner.png"}, childPaths(m, appIndex(m)))
	assert.Equal(t, 0, m.RowCount(activitiesIndex(m)))
	require.NoError(t, m.Verify())
}

func TestSetSource_Switches(t *testing.T) {
	t.Parallel()
	first := newTestTree(t, "res/mipmap/ic_launcher.png")
	second := newTestTree(t, "res/drawable/tv_banner.png")
	m := newTestModel(t, first, testScopes())
	require.Equal(t, 1, m.RowCount(appIndex(m)))

	m.SetSource(second)
	assert.Equal(t, 0, m.RowCount(appIndex(m)))
	assert.Equal(t, 1, m.RowCount(activitiesIndex(m)))

	// The old source is no longer observed.
	require.NoError(t, first.WriteContent("res/mipmap-hdpi/ic_launcher.png", nil))
	assert.Equal(t, 0, m.RowCount(appIndex(m)))
	assert.Same(t, Source(second), m.Source())
}

func TestClose_StopsObserving(t *testing.T) {
	t.Parallel()
	tree := restree.New()
	m := newTestModel(t, tree, testScopes())
	require.NoError(t, m.Close())
	require.NoError(t, tree.WriteContent("res/mipmap/ic_launcher.png", nil))
	assert.Equal(t, 0, m.Len())
}

// testHash computes the content hash Snapshot records.
func testHash(content string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(content)))
}

func TestIndexForPath(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t, "res/mipmap-hdpi/ic_launcher.png", "res/values/strings.xml")
	m := newTestModel(t, tree, testScopes())

	idx, err := m.IndexForPath("res/mipmap-hdpi/ic_launcher.png")
	require.NoError(t, err)
	assert.Equal(t, "res/mipmap-hdpi/ic_launcher.png", m.GetIconPath(idx))

	_, err = m.IndexForPath("res/values/strings.xml")
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = m.IndexForPath("res/nope.png")
	assert.ErrorIs(t, err, source.ErrNotFound)

	empty := newTestModel(t, nil, testScopes())
	_, err = empty.IndexForPath("res/mipmap-hdpi/ic_launcher.png")
	assert.ErrorIs(t, err, ErrNoSource)
}
