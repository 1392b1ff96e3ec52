package apkicons

// EventKind identifies a projection change.
type EventKind int

const (
	EventRowsInserted EventKind = iota
	EventRowsRemoved
	EventDataChanged
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventRowsInserted:
		return "rows-inserted"
	case EventRowsRemoved:
		return "rows-removed"
	case EventDataChanged:
		return "data-changed"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event describes a change to rows First..Last under Parent. Reset events
// carry no rows. Events are delivered after the change has been applied.
type Event struct {
	Kind   EventKind
	Parent Index
	First  int
	Last   int
}

type watcher struct {
	fn func(Event)
}

// Watch calls fn after every projection change until the returned function
// is called.
func (m *Model) Watch(fn func(Event)) (cancel func()) {
	w := &watcher{fn: fn}
	m.watchers = append(m.watchers, w)
	return func() {
		for i, cur := range m.watchers {
			if cur == w {
				m.watchers = append(m.watchers[:i:i], m.watchers[i+1:]...)
				return
			}
		}
	}
}

func (m *Model) emit(ev Event) {
	for _, w := range m.watchers {
		w.fn(ev)
	}
}
