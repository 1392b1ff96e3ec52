// Package bimap provides a one-to-one relation kept as two mutually inverse
// hash maps. Every mutation updates both sides, so a lookup in one direction
// always has a matching entry in the other.
package bimap

import "fmt"

// Map relates keys of type K to values of type V one-to-one.
type Map[K comparable, V comparable] struct {
	forward map[K]V
	inverse map[V]K
}

// New returns an empty Map.
func New[K comparable, V comparable]() *Map[K, V] {
	return &Map[K, V]{
		forward: make(map[K]V),
		inverse: make(map[V]K),
	}
}

// Insert relates k and v. Neither side may already be related to anything:
// re-pointing an existing entry is a programming error and panics.
func (m *Map[K, V]) Insert(k K, v V) {
	if old, ok := m.forward[k]; ok {
		panic(fmt.Sprintf("bimap: key %v already related to %v", k, old))
	}
	if old, ok := m.inverse[v]; ok {
		panic(fmt.Sprintf("bimap: value %v already related to %v", v, old))
	}
	m.forward[k] = v
	m.inverse[v] = k
}

// Value returns the value related to k.
func (m *Map[K, V]) Value(k K) (V, bool) {
	v, ok := m.forward[k]
	return v, ok
}

// Key returns the key related to v.
func (m *Map[K, V]) Key(v V) (K, bool) {
	k, ok := m.inverse[v]
	return k, ok
}

// ContainsKey reports whether k is related to a value.
func (m *Map[K, V]) ContainsKey(k K) bool {
	_, ok := m.forward[k]
	return ok
}

// ContainsValue reports whether v is related to a key.
func (m *Map[K, V]) ContainsValue(v V) bool {
	_, ok := m.inverse[v]
	return ok
}

// DeleteKey removes k and its related value. It returns the removed value.
func (m *Map[K, V]) DeleteKey(k K) (V, bool) {
	v, ok := m.forward[k]
	if !ok {
		return v, false
	}
	if back, ok := m.inverse[v]; !ok || back != k {
		panic(fmt.Sprintf("bimap: inverse entry for %v is missing", k))
	}
	delete(m.forward, k)
	delete(m.inverse, v)
	return v, true
}

// DeleteValue removes v and its related key. It returns the removed key.
func (m *Map[K, V]) DeleteValue(v V) (K, bool) {
	k, ok := m.inverse[v]
	if !ok {
		return k, false
	}
	m.DeleteKey(k)
	return k, true
}

// Len returns the number of related pairs.
func (m *Map[K, V]) Len() int {
	return len(m.forward)
}

// Clear removes every pair.
func (m *Map[K, V]) Clear() {
	clear(m.forward)
	clear(m.inverse)
}

// Range calls fn for each pair until fn returns false. Iteration order is
// unspecified. fn must not mutate the map.
func (m *Map[K, V]) Range(fn func(k K, v V) bool) {
	for k, v := range m.forward {
		if !fn(k, v) {
			return
		}
	}
}

// Verify checks that both sides are exact inverses and returns a descriptive
// error for the first discrepancy found.
func (m *Map[K, V]) Verify() error {
	if len(m.forward) != len(m.inverse) {
		return fmt.Errorf("bimap: %d forward entries but %d inverse entries", len(m.forward), len(m.inverse))
	}
	for k, v := range m.forward {
		back, ok := m.inverse[v]
		if !ok {
			return fmt.Errorf("bimap: no inverse entry for %v -> %v", k, v)
		}
		if back != k {
			return fmt.Errorf("bimap: inverse of %v is %v, want %v", v, back, k)
		}
	}
	return nil
}
