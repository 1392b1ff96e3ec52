package apkicons

import (
	"fmt"
	"image"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/jward/apkicons/internal/bimap"
	"github.com/jward/apkicons/internal/resource"
	"github.com/jward/apkicons/internal/treenode"
)

// Model is the icon projection of a Source. It is not safe for concurrent
// use; all calls, and the source's notifications, must come from one
// goroutine.
type Model struct {
	src         Source
	unsubscribe func()
	resolver    Resolver
	scopes      []*Scope
	log         *logrus.Entry

	root       *treenode.Branch[treenode.Node]
	app        *applicationGroup
	activities *activitiesGroup
	proxies    *bimap.Map[Handle, *IconNode]

	cacheSize int
	images    *lru.Cache[Handle, image.Image]

	watchers []*watcher

	// busy counts nested source notifications and rebuilds in progress.
	// Scope and source changes requested meanwhile wait in pending.
	busy    int
	pending []func()
}

// Option configures a Model.
type Option func(*Model)

// WithLogger routes the model's logging through entry.
func WithLogger(entry *logrus.Entry) Option {
	return func(m *Model) {
		m.log = entry
	}
}

// WithResolver replaces the default res/ directory resolver.
func WithResolver(r Resolver) Option {
	return func(m *Model) {
		m.resolver = r
	}
}

// WithIconCacheSize sets how many decoded images the model keeps.
func WithIconCacheSize(n int) Option {
	return func(m *Model) {
		m.cacheSize = n
	}
}

// New builds the projection of src under scopes and subscribes to src's
// notifications. src may be nil; the model is then empty until SetSource.
func New(src Source, scopes []*Scope, opts ...Option) (*Model, error) {
	m := &Model{
		resolver:  resource.DirResolver{},
		cacheSize: 64,
		proxies:   bimap.New[Handle, *IconNode](),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		m.log = logrus.NewEntry(l)
	}
	images, err := lru.New[Handle, image.Image](m.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("apkicons: icon cache: %w", err)
	}
	m.images = images

	m.root = treenode.NewRoot[treenode.Node]()
	m.app = &applicationGroup{}
	m.activities = &activitiesGroup{}
	m.root.AddChild(m.app)
	m.root.AddChild(m.activities)

	m.scopes = scopes
	m.SetSource(src)
	return m, nil
}

// Close unsubscribes from the source. The projection keeps its last state.
func (m *Model) Close() error {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	return nil
}

// Source returns the observed source, or nil.
func (m *Model) Source() Source {
	return m.src
}

// Scopes returns the classification scopes in the order they were supplied.
func (m *Model) Scopes() []*Scope {
	return m.scopes
}

// SetSource switches the model to a new source and rebuilds the projection.
// Called from a Watch callback, the switch happens once the change being
// delivered has been applied.
func (m *Model) SetSource(src Source) {
	m.apply(func() {
		if m.unsubscribe != nil {
			m.unsubscribe()
			m.unsubscribe = nil
		}
		m.src = src
		if src != nil {
			m.unsubscribe = src.Subscribe(&sourceListener{m: m})
		}
		m.rebuild()
	})
}

// SetScopes replaces the classification scopes and rebuilds the projection.
// Like SetSource it may be called from a Watch callback.
func (m *Model) SetScopes(scopes []*Scope) {
	m.apply(func() {
		m.scopes = scopes
		m.rebuild()
	})
}

// apply runs fn now, or queues it until the projection change in progress
// has finished.
func (m *Model) apply(fn func()) {
	if m.busy > 0 {
		m.pending = append(m.pending, fn)
		return
	}
	m.mutate(fn)
}

// mutate runs fn as one projection change, then runs the changes queued
// while it was in progress.
func (m *Model) mutate(fn func()) {
	m.busy++
	func() {
		defer func() { m.busy-- }()
		fn()
	}()
	for m.busy == 0 && len(m.pending) > 0 {
		next := m.pending[0]
		m.pending = m.pending[1:]
		m.mutate(next)
	}
}

// Len returns the number of projected icons.
func (m *Model) Len() int {
	return m.proxies.Len()
}

// Verify checks that the handle-to-icon map is a bijection and agrees with
// the tree. It returns nil for a consistent model.
func (m *Model) Verify() error {
	if err := m.proxies.Verify(); err != nil {
		return err
	}
	seen := 0
	var err error
	m.eachIcon(func(icon *IconNode) {
		seen++
		if err == nil && !m.proxies.ContainsValue(icon) {
			err = fmt.Errorf("apkicons: icon row %d has no source mapping", icon.Row())
		}
	})
	if err == nil && seen != m.proxies.Len() {
		err = fmt.Errorf("apkicons: %d icon rows but %d source mappings", seen, m.proxies.Len())
	}
	for _, act := range m.activities.Children() {
		if err == nil && !act.HasChildren() {
			err = fmt.Errorf("apkicons: activity %q has no icons", act.scope.Name)
		}
	}
	return err
}

// eachIcon visits every icon in display order.
func (m *Model) eachIcon(fn func(*IconNode)) {
	for _, icon := range m.app.Children() {
		fn(icon)
	}
	for _, act := range m.activities.Children() {
		for _, icon := range act.Children() {
			fn(icon)
		}
	}
}
