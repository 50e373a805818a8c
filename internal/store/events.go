package store

// Kind identifies what changed.
type Kind int

// Event kinds.
const (
	Added Kind = iota + 1
	Updated
	Deleted
	ClearedCompleted
	ToggledAll
	Reloaded
)

var kindNames = map[Kind]string{
	Added:            "added",
	Updated:          "updated",
	Deleted:          "deleted",
	ClearedCompleted: "cleared_completed",
	ToggledAll:       "toggled_all",
	Reloaded:         "reloaded",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Event describes one applied mutation.
type Event struct {
	Kind Kind
	// TaskID is set for single-task changes.
	TaskID string
	// Title is the task title after the change (or before deletion).
	Title string
	// Count is the number of tasks affected.
	Count int
	// Completed is the value applied by ToggleAll, or the task's state
	// after an update.
	Completed bool
	// Err is the persistence error, if saving failed. The in-memory
	// change stands either way.
	Err error
}

// Listener receives events synchronously, after the change was persisted.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers fn and returns a function that removes it.
// Listeners are called in subscription order.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) emit(e Event) {
	// Listeners may unsubscribe while being notified.
	subs := append([]subscription(nil), s.subs...)
	for _, sub := range subs {
		sub.fn(e)
	}
}
