package bimap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert_BothDirections(t *testing.T) {
	t.Parallel()
	m := New[string, int]()
	m.Insert("a", 1)
	m.Insert("b", 2)

	v, ok := m.Value("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	k, ok := m.Key(2)
	require.True(t, ok)
	assert.Equal(t, "b", k)
	assert.Equal(t, 2, m.Len())
	require.NoError(t, m.Verify())
}

func TestInsert_DuplicateSidesPanic(t *testing.T) {
	t.Parallel()
	m := New[string, int]()
	m.Insert("a", 1)
	assert.Panics(t, func() { m.Insert("a", 2) })
	assert.Panics(t, func() { m.Insert("b", 1) })
	require.NoError(t, m.Verify())
}

func TestDeleteKey_RemovesInverse(t *testing.T) {
	t.Parallel()
	m := New[string, int]()
	m.Insert("a", 1)

	v, ok := m.DeleteKey("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.False(t, m.ContainsValue(1))
	assert.False(t, m.ContainsKey("a"))

	_, ok = m.DeleteKey("a")
	assert.False(t, ok)
}

func TestDeleteValue_RemovesForward(t *testing.T) {
	t.Parallel()
	m := New[string, int]()
	m.Insert("a", 1)
	m.Insert("b", 2)

	k, ok := m.DeleteValue(2)
	require.True(t, ok)
	assert.Equal(t, "b", k)
	assert.False(t, m.ContainsKey("b"))
	assert.Equal(t, 1, m.Len())
	require.NoError(t, m.Verify())
}

func TestClear(t *testing.T) {
	t.Parallel()
	m := New[string, int]()
	m.Insert("a", 1)
	m.Insert("b", 2)
	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.ContainsValue(1))
}

func TestRange_StopsEarly(t *testing.T) {
	t.Parallel()
	m := New[int, int]()
	for i := range 10 {
		m.Insert(i, i*10)
	}
	seen := 0
	m.Range(func(k, v int) bool {
		assert.Equal(t, k*10, v)
		seen++
		return seen < 3
	})
	assert.Equal(t, 3, seen)
}

func TestVerify_DetectsCorruption(t *testing.T) {
	t.Parallel()
	m := New[string, int]()
	m.Insert("a", 1)
	m.inverse[1] = "z"
	assert.Error(t, m.Verify())

	m2 := New[string, int]()
	m2.forward["x"] = 9
	assert.Error(t, m2.Verify())
}
