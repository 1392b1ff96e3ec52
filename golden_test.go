package apkicons

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/apkicons/internal/manifest"
	"github.com/jward/apkicons/internal/restree"
)

// Golden test format: the expected projection of a decoded APK project.
type goldenFile struct {
	Application []goldenIcon     `json:"application"`
	Activities  []goldenActivity `json:"activities"`
}

type goldenActivity struct {
	Caption string       `json:"caption"`
	Icons   []goldenIcon `json:"icons"`
}

type goldenIcon struct {
	Type    string `json:"type"`
	Caption string `json:"caption"`
	Path    string `json:"path"`
}

// TestGolden walks testdata/{case}/ directories, projects each project/
// tree and compares the result with golden.json.
func TestGolden(t *testing.T) {
	cases, err := os.ReadDir("testdata")
	if err != nil {
		t.Skip("no testdata directory found")
	}

	for _, c := range cases {
		if !c.IsDir() {
			continue
		}
		testDir := filepath.Join("testdata", c.Name())
		goldenPath := filepath.Join(testDir, "golden.json")
		projectDir := filepath.Join(testDir, "project")
		if _, err := os.Stat(goldenPath); err != nil {
			continue
		}

		t.Run(c.Name(), func(t *testing.T) {
			t.Parallel()
			runGoldenTest(t, projectDir, goldenPath)
		})
	}
}

func runGoldenTest(t *testing.T, projectDir, goldenPath string) {
	t.Helper()

	goldenData, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	var golden goldenFile
	require.NoError(t, json.Unmarshal(goldenData, &golden))

	man, err := manifest.Load(filepath.Join(projectDir, "AndroidManifest.xml"))
	require.NoError(t, err)
	tree, err := restree.Load(projectDir)
	require.NoError(t, err)

	m := newTestModel(t, tree, man.Scopes)
	require.NoError(t, m.Verify())
	assert.Equal(t, golden, projectionOf(m))

	// An incremental build must land on the same rows as the initial one.
	t.Run("incremental", func(t *testing.T) {
		mem := restree.New()
		inc := newTestModel(t, mem, man.Scopes)
		for _, rec := range m.Snapshot() {
			h, ok := tree.Lookup(rec.Path)
			require.True(t, ok)
			data, err := tree.ContentOf(h)
			require.NoError(t, err)
			require.NoError(t, mem.WriteContent(rec.Path, data))
		}
		require.NoError(t, inc.Verify())
		assert.Equal(t, golden, projectionOf(inc))
	})
}

// projectionOf reads the model back through its index interface.
func projectionOf(m *Model) goldenFile {
	out := goldenFile{Application: []goldenIcon{}, Activities: []goldenActivity{}}
	app := appIndex(m)
	for row := range m.RowCount(app) {
		out.Application = append(out.Application, goldenIconAt(m, m.Index(row, 0, app)))
	}
	acts := activitiesIndex(m)
	for row := range m.RowCount(acts) {
		act := m.Index(row, 0, acts)
		ga := goldenActivity{Caption: m.Data(act)}
		for i := range m.RowCount(act) {
			ga.Icons = append(ga.Icons, goldenIconAt(m, m.Index(i, 0, act)))
		}
		out.Activities = append(out.Activities, ga)
	}
	return out
}

func goldenIconAt(m *Model, idx Index) goldenIcon {
	return goldenIcon{
		Type:    m.Data(idx.Sibling(ColumnType)),
		Caption: m.Data(idx),
		Path:    m.Data(idx.Sibling(ColumnPath)),
	}
}
