package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/tasklist/internal/filelock"
	"github.com/twiced-technology-gmbh/tasklist/internal/persist"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
	"github.com/twiced-technology-gmbh/tasklist/internal/view"
)

// recorder is an in-memory Persister that counts saves and can fail them.
type recorder struct {
	initial []task.Task
	saved   [][]task.Task
	failErr error
}

func (r *recorder) Load() []task.Task { return append([]task.Task(nil), r.initial...) }

func (r *recorder) Save(tasks []task.Task) error {
	r.saved = append(r.saved, tasks)
	return r.failErr
}

func (r *recorder) last() []task.Task {
	if len(r.saved) == 0 {
		return nil
	}
	return r.saved[len(r.saved)-1]
}

// tickingClock advances one millisecond per call.
func tickingClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}
}

func newTestStore(t *testing.T, p Persister) *Store {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	return New(p,
		WithIDFunc(task.Sequence("t")),
		WithClock(tickingClock(time.UnixMilli(1_700_000_000_000))),
		WithLogger(logger),
	)
}

func TestAddPrependsAndPersists(t *testing.T) {
	rec := &recorder{}
	s := newTestStore(t, rec)

	first, ok := s.Add("  Write report ", " due Friday ")
	require.True(t, ok)
	assert.Equal(t, "t-1", first.ID)
	assert.Equal(t, "Write report", first.Title)
	assert.Equal(t, "due Friday", first.Notes)
	assert.False(t, first.Completed)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	second, ok := s.Add("Buy milk", "")
	require.True(t, ok)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, second.ID, s.Tasks()[0].ID, "new task is at index 0")
	assert.Len(t, rec.saved, 2)
	assert.Equal(t, s.Tasks(), rec.last())
}

func TestAddRejectsBlankTitle(t *testing.T) {
	rec := &recorder{}
	s := newTestStore(t, rec)

	for _, title := range []string{"", "   ", "\t\n"} {
		_, ok := s.Add(title, "notes")
		assert.False(t, ok, "%q", title)
	}
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, rec.saved)
}

func TestUpdate(t *testing.T) {
	rec := &recorder{}
	s := newTestStore(t, rec)
	added, _ := s.Add("Buy milk", "")

	require.True(t, s.Update(added.ID, task.SetCompleted(true)))
	got, ok := s.Get(added.ID)
	require.True(t, ok)
	assert.True(t, got.Completed)
	assert.Greater(t, got.UpdatedAt, added.UpdatedAt)
	assert.Equal(t, added.CreatedAt, got.CreatedAt)

	require.True(t, s.Update(added.ID, task.SetTitle("  Buy oat milk ").Merge(task.SetNotes("2 cartons"))))
	got, _ = s.Get(added.ID)
	assert.Equal(t, "Buy oat milk", got.Title)
	assert.Equal(t, "2 cartons", got.Notes)
	assert.True(t, got.Completed)
	assert.Len(t, rec.saved, 3)
}

func TestUpdateUnknownIDLeavesCollectionIdentical(t *testing.T) {
	rec := &recorder{}
	s := newTestStore(t, rec)
	s.Add("Write report", "due Friday")
	s.Add("Buy milk", "")
	before := s.Tasks()
	saves := len(rec.saved)

	assert.False(t, s.Update("nope", task.SetCompleted(true)))
	assert.Equal(t, before, s.Tasks())
	assert.Len(t, rec.saved, saves)
}

func TestUpdateRejectsBlankTitle(t *testing.T) {
	s := newTestStore(t, &recorder{})
	added, _ := s.Add("Buy milk", "")

	assert.False(t, s.Update(added.ID, task.SetTitle("   ")))
	got, _ := s.Get(added.ID)
	assert.Equal(t, added, got)
}

func TestDeleteTwice(t *testing.T) {
	rec := &recorder{}
	s := newTestStore(t, rec)
	a, _ := s.Add("a", "")
	s.Add("b", "")

	assert.True(t, s.Delete(a.ID))
	assert.Equal(t, 1, s.Len())
	saves := len(rec.saved)

	assert.False(t, s.Delete(a.ID))
	assert.Equal(t, 1, s.Len())
	assert.Len(t, rec.saved, saves)
}

func TestClearCompleted(t *testing.T) {
	rec := &recorder{}
	s := newTestStore(t, rec)
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		s.Add(title, "")
	}
	for _, tk := range s.Tasks()[:3] {
		s.Update(tk.ID, task.SetCompleted(true))
	}
	saves := len(rec.saved)

	assert.Equal(t, 3, s.ClearCompleted())
	assert.Equal(t, 2, s.Len())
	for _, tk := range s.Tasks() {
		assert.False(t, tk.Completed)
	}
	assert.Len(t, rec.saved, saves+1)

	assert.Equal(t, 0, s.ClearCompleted())
	assert.Len(t, rec.saved, saves+1, "nothing removed, nothing saved")
}

func TestToggleAll(t *testing.T) {
	rec := &recorder{}
	s := newTestStore(t, rec)
	a, _ := s.Add("a", "")
	b, _ := s.Add("b", "")
	s.Update(b.ID, task.SetCompleted(true))
	bDone, _ := s.Get(b.ID)

	assert.True(t, s.ToggleAll())
	for _, tk := range s.Tasks() {
		assert.True(t, tk.Completed)
	}
	aNow, _ := s.Get(a.ID)
	bNow, _ := s.Get(b.ID)
	assert.Greater(t, aNow.UpdatedAt, a.UpdatedAt, "changed task is stamped")
	assert.Equal(t, bDone.UpdatedAt, bNow.UpdatedAt, "unchanged task keeps its stamp")

	assert.False(t, s.ToggleAll())
	for _, tk := range s.Tasks() {
		assert.False(t, tk.Completed)
	}
}

func TestToggleAllOnEmptyListStillPersists(t *testing.T) {
	rec := &recorder{}
	s := newTestStore(t, rec)

	assert.False(t, s.ToggleAll())
	require.Len(t, rec.saved, 1)
	assert.Empty(t, rec.last())
}

func TestTasksReturnsCopy(t *testing.T) {
	s := newTestStore(t, &recorder{})
	s.Add("a", "")

	got := s.Tasks()
	got[0].Title = "mutated"
	tk, _ := s.Get(got[0].ID)
	assert.Equal(t, "a", tk.Title)
}

func TestEmptyStoreTasksIsNotNil(t *testing.T) {
	s := newTestStore(t, &recorder{})
	assert.NotNil(t, s.Tasks())
	assert.Empty(t, s.Tasks())
}

func TestNewLoadsPersistedTasks(t *testing.T) {
	rec := &recorder{initial: []task.Task{{ID: "x", Title: "from disk"}}}
	s := newTestStore(t, rec)
	assert.Equal(t, 1, s.Len())

	rec.initial = nil
	s.Reload()
	assert.Equal(t, 0, s.Len())
	assert.NotNil(t, s.Tasks())
}

func TestEventsAndWriteFailure(t *testing.T) {
	boom := errors.New("disk full")
	rec := &recorder{failErr: boom}
	logger, hook := logtest.NewNullLogger()
	s := New(rec, WithIDFunc(task.Sequence("t")), WithLogger(logger))

	var events []Event
	unsubscribe := s.Subscribe(func(e Event) { events = append(events, e) })

	added, ok := s.Add("Buy milk", "")
	require.True(t, ok)
	require.Len(t, events, 1)
	assert.Equal(t, Added, events[0].Kind)
	assert.Equal(t, added.ID, events[0].TaskID)
	assert.ErrorIs(t, events[0].Err, boom)
	assert.Equal(t, 1, s.Len(), "change is kept in memory")
	require.NotNil(t, hook.LastEntry())

	rec.failErr = nil
	s.ToggleAll()
	require.Len(t, events, 2)
	assert.Equal(t, ToggledAll, events[1].Kind)
	assert.True(t, events[1].Completed)
	assert.NoError(t, events[1].Err)

	unsubscribe()
	s.Delete(added.ID)
	assert.Len(t, events, 2)
}

func TestSubscribeOrderAndSelfUnsubscribe(t *testing.T) {
	s := newTestStore(t, &recorder{})

	var order []string
	var unsubFirst func()
	unsubFirst = s.Subscribe(func(Event) {
		order = append(order, "first")
		unsubFirst()
	})
	s.Subscribe(func(Event) { order = append(order, "second") })

	s.Add("a", "")
	s.Add("b", "")
	assert.Equal(t, []string{"first", "second", "second"}, order)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "cleared_completed", ClearedCompleted.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestEndToEndScenario(t *testing.T) {
	adapter := persist.NewAdapter(persist.NewMemory())
	s := New(adapter, WithClock(tickingClock(time.Now())))

	_, ok := s.Add("Write report", "due Friday")
	require.True(t, ok)
	milk, ok := s.Add("Buy milk", "")
	require.True(t, ok)

	titles := func(tasks []task.Task) []string {
		out := make([]string, len(tasks))
		for i, tk := range tasks {
			out[i] = tk.Title
		}
		return out
	}
	assert.Equal(t, []string{"Buy milk", "Write report"}, titles(s.Tasks()))

	require.True(t, s.Update(milk.ID, task.SetCompleted(true)))
	done := view.Project(s.Tasks(), view.NewState().WithFilter(view.FilterCompleted))
	assert.Equal(t, []string{"Buy milk"}, titles(done))

	assert.Equal(t, 1, s.ClearCompleted())
	assert.Equal(t, []string{"Write report"}, titles(s.Tasks()))

	// A fresh store over the same slot sees the persisted result.
	reopened := New(adapter)
	assert.Equal(t, s.Tasks(), reopened.Tasks())
}

func titlesOf(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, tk := range tasks {
		out[i] = tk.Title
	}
	return out
}

// fileStores opens stores over one file slot, as separate processes would.
func fileStores(t *testing.T) (open func(opts ...Option) *Store, lock LockFunc) {
	t.Helper()
	dir := t.TempDir()
	logger, _ := logtest.NewNullLogger()
	lockPath := filepath.Join(dir, "session"+filelock.Suffix)
	open = func(opts ...Option) *Store {
		adapter := persist.NewAdapter(persist.NewFile(dir, ".json"), persist.WithLogger(logger))
		return New(adapter, append([]Option{WithLogger(logger)}, opts...)...)
	}
	lock = func() (func() error, error) { return filelock.Lock(lockPath) }
	return open, lock
}

func TestSharedSlotKeepsOtherWriters(t *testing.T) {
	open, lock := fileStores(t)

	long := open(WithSharedSlot(lock))
	short := open()
	_, ok := short.Add("added from CLI", "")
	require.True(t, ok)

	_, ok = long.Add("added in TUI", "")
	require.True(t, ok)
	assert.Equal(t, []string{"added in TUI", "added from CLI"}, titlesOf(long.Tasks()))

	assert.Equal(t, []string{"added in TUI", "added from CLI"}, titlesOf(open().Tasks()))
}

func TestSharedSlotSeesDeletesByOthers(t *testing.T) {
	open, lock := fileStores(t)

	first := open()
	a, _ := first.Add("a", "")
	first.Add("b", "")

	long := open(WithSharedSlot(lock))
	require.Equal(t, 2, long.Len())

	require.True(t, open().Delete(a.ID))

	assert.False(t, long.Update(a.ID, task.SetCompleted(true)), "task is gone on disk")
	assert.True(t, long.ToggleAll())
	assert.Equal(t, []string{"b"}, titlesOf(open().Tasks()))
	assert.True(t, open().Tasks()[0].Completed)
}

func TestSharedSlotWithoutLock(t *testing.T) {
	open, _ := fileStores(t)

	long := open(WithSharedSlot(nil))
	open().Add("elsewhere", "")
	long.Add("here", "")
	assert.Equal(t, []string{"here", "elsewhere"}, titlesOf(open().Tasks()))
}

func TestSharedSlotLockFailureStillWrites(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	rec := &recorder{}
	s := New(rec, WithLogger(logger), WithSharedSlot(func() (func() error, error) {
		return nil, errors.New("no locks here")
	}))

	_, ok := s.Add("a", "")
	require.True(t, ok)
	assert.Len(t, rec.saved, 1)
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "slot lock unavailable")
}
