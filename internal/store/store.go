// Package store owns the canonical in-memory task list. Every mutation is
// mirrored to the persister before it returns.
//
// A Store is not safe for concurrent use. Callers that receive intents from
// several goroutines serialize them.
package store

import (
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/twiced-technology-gmbh/tasklist/internal/task"
)

// Persister is the durable side of the store.
type Persister interface {
	Load() []task.Task
	Save(tasks []task.Task) error
}

// Store holds the task list, newest first.
type Store struct {
	tasks     []task.Task
	persister Persister
	newID     task.IDFunc
	now       func() time.Time
	log       log.FieldLogger

	shared bool
	lock   LockFunc

	subs    []subscription
	nextSub int
}

// LockFunc acquires an exclusive lock on a slot shared with other
// processes and returns its release.
type LockFunc func() (unlock func() error, err error)

// Option configures a Store.
type Option func(*Store)

// WithIDFunc replaces the uuid generator.
func WithIDFunc(fn task.IDFunc) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l log.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// WithSharedSlot marks the slot as written by other processes too. Every
// mutation then re-reads the persisted list before applying the change,
// holding lock (when non-nil) until the change is saved.
func WithSharedSlot(lock LockFunc) Option {
	return func(s *Store) {
		s.shared = true
		s.lock = lock
	}
}

// New loads the persisted list and returns a Store over it.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		newID:     task.NewID,
		now:       time.Now,
		log:       log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = s.load()
	return s
}

func (s *Store) load() []task.Task {
	tasks := s.persister.Load()
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks
}

// Tasks returns a copy of the list in store order.
func (s *Store) Tasks() []task.Task {
	return append(make([]task.Task, 0, len(s.tasks)), s.tasks...)
}

// Len returns the number of tasks.
func (s *Store) Len() int { return len(s.tasks) }

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (task.Task, bool) {
	i := task.IndexOf(s.tasks, id)
	if i < 0 {
		return task.Task{}, false
	}
	return s.tasks[i], true
}

// Add prepends a new active task. It returns false, changing nothing,
// when the title is blank.
func (s *Store) Add(title, notes string) (task.Task, bool) {
	if strings.TrimSpace(title) == "" {
		return task.Task{}, false
	}
	defer s.begin()()

	t := task.New(s.newID(), title, notes, s.now())
	s.tasks = append([]task.Task{t}, s.tasks...)

	err := s.persist()
	s.emit(Event{Kind: Added, TaskID: t.ID, Title: t.Title, Count: 1, Err: err})
	return t, true
}

// Update applies p to the task with the given id and stamps UpdatedAt.
// It returns false, changing nothing, for an unknown id or a patch that
// would blank the title.
func (s *Store) Update(id string, p task.Patch) bool {
	if !p.Valid() {
		return false
	}
	defer s.begin()()

	i := task.IndexOf(s.tasks, id)
	if i < 0 {
		return false
	}

	p.Apply(&s.tasks[i], s.now())
	t := s.tasks[i]

	err := s.persist()
	s.emit(Event{Kind: Updated, TaskID: t.ID, Title: t.Title, Count: 1, Completed: t.Completed, Err: err})
	return true
}

// Delete removes the task with the given id.
func (s *Store) Delete(id string) bool {
	defer s.begin()()

	i := task.IndexOf(s.tasks, id)
	if i < 0 {
		return false
	}

	removed := s.tasks[i]
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)

	err := s.persist()
	s.emit(Event{Kind: Deleted, TaskID: removed.ID, Title: removed.Title, Count: 1, Err: err})
	return true
}

// ClearCompleted removes every completed task and returns how many went.
func (s *Store) ClearCompleted() int {
	defer s.begin()()

	kept := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}

	removed := len(s.tasks) - len(kept)
	if removed == 0 {
		return 0
	}
	s.tasks = kept

	err := s.persist()
	s.emit(Event{Kind: ClearedCompleted, Count: removed, Err: err})
	return removed
}

// ToggleAll completes every task if any is active, otherwise reopens every
// task. It returns the value applied. The list is persisted even when empty.
func (s *Store) ToggleAll() bool {
	defer s.begin()()

	target := false
	for _, t := range s.tasks {
		if !t.Completed {
			target = true
			break
		}
	}

	now := s.now()
	changed := 0
	for i := range s.tasks {
		if s.tasks[i].Completed == target {
			continue
		}
		s.tasks[i].Completed = target
		s.tasks[i].Touch(now)
		changed++
	}

	err := s.persist()
	s.emit(Event{Kind: ToggledAll, Count: changed, Completed: target, Err: err})
	return target
}

// Reload replaces the list with what the persister currently holds.
func (s *Store) Reload() {
	s.tasks = s.load()
	s.emit(Event{Kind: Reloaded, Count: len(s.tasks)})
}

// begin prepares a mutation on a shared slot: it takes the lock and
// picks up what other processes wrote. The returned func releases the lock.
func (s *Store) begin() func() {
	if !s.shared {
		return func() {}
	}

	var unlock func() error
	if s.lock != nil {
		u, err := s.lock()
		if err != nil {
			s.log.WithError(err).Warn("slot lock unavailable, writing without it")
		} else {
			unlock = u
		}
	}
	s.tasks = s.load()

	return func() {
		if unlock == nil {
			return
		}
		if err := unlock(); err != nil {
			s.log.WithError(err).Warn("releasing slot lock")
		}
	}
}

func (s *Store) persist() error {
	if err := s.persister.Save(s.Tasks()); err != nil {
		s.log.WithError(err).Warn("saving tasks failed; change kept in memory")
		return err
	}
	return nil
}
