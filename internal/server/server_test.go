package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/tasklist/internal/persist"
	"github.com/twiced-technology-gmbh/tasklist/internal/store"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
	"github.com/twiced-technology-gmbh/tasklist/internal/view"
)

func newTestServer(t *testing.T) (*echo.Echo, *Controller) {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	s := store.New(persist.NewAdapter(persist.NewMemory(), persist.WithLogger(logger)),
		store.WithIDFunc(task.Sequence("id")),
		store.WithLogger(logger),
	)
	ctrl := NewController(s, logger)
	return New(ctrl), ctrl
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCreateAndList(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/tasks", `{"title":"Write report","notes":"due Friday"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[task.Task](t, rec)
	assert.Equal(t, "id-1", created.ID)
	assert.Equal(t, "due Friday", created.Notes)

	rec = do(e, http.MethodPost, "/api/tasks", `{"title":"Buy milk"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[listResponse](t, rec)
	require.Len(t, list.Tasks, 2)
	assert.Equal(t, "Buy milk", list.Tasks[0].Title)
	assert.Equal(t, view.Stats{Total: 2, Active: 2}, list.Stats)

	rec = do(e, http.MethodGet, "/api/tasks?search=REPORT", "")
	list = decode[listResponse](t, rec)
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, "id-1", list.Tasks[0].ID)
	assert.Equal(t, 2, list.Stats.Total, "stats cover the whole list")
}

func TestCreateRejectsBadInput(t *testing.T) {
	e, ctrl := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/tasks", `{"title":"   "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "EMPTY_TITLE", decode[errorResponse](t, rec).Code)

	rec = do(e, http.MethodPost, "/api/tasks", `{"title":"x","priority":"high"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/api/tasks", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ctrl.Do(func(s *store.Store) { assert.Equal(t, 0, s.Len()) })
}

func TestListRejectsUnknownFilter(t *testing.T) {
	e, _ := newTestServer(t)
	rec := do(e, http.MethodGet, "/api/tasks?filter=later", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_FILTER", decode[errorResponse](t, rec).Code)
}

func TestUpdate(t *testing.T) {
	e, _ := newTestServer(t)
	do(e, http.MethodPost, "/api/tasks", `{"title":"Buy milk"}`)

	rec := do(e, http.MethodPatch, "/api/tasks/id-1", `{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[task.Task](t, rec).Completed)

	rec = do(e, http.MethodGet, "/api/tasks?filter=completed", "")
	assert.Len(t, decode[listResponse](t, rec).Tasks, 1)

	rec = do(e, http.MethodPatch, "/api/tasks/id-1", `{"title":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(e, http.MethodPatch, "/api/tasks/id-1", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "NO_CHANGES", decode[errorResponse](t, rec).Code)

	rec = do(e, http.MethodPatch, "/api/tasks/nope", `{"completed":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TASK_NOT_FOUND", decode[errorResponse](t, rec).Code)
}

func TestGetByExactID(t *testing.T) {
	e, _ := newTestServer(t)
	do(e, http.MethodPost, "/api/tasks", `{"title":"a"}`)
	do(e, http.MethodPost, "/api/tasks", `{"title":"b"}`)

	rec := do(e, http.MethodGet, "/api/tasks/id-2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b", decode[task.Task](t, rec).Title)

	rec = do(e, http.MethodGet, "/api/tasks/id-", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TASK_NOT_FOUND", decode[errorResponse](t, rec).Code)
}

func TestPrefixIDsChangeNothing(t *testing.T) {
	e, ctrl := newTestServer(t)
	do(e, http.MethodPost, "/api/tasks", `{"title":"only"}`)

	rec := do(e, http.MethodPatch, "/api/tasks/i", `{"completed":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodDelete, "/api/tasks/i", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TASK_NOT_FOUND", decode[errorResponse](t, rec).Code)

	ctrl.Do(func(s *store.Store) {
		require.Equal(t, 1, s.Len())
		assert.False(t, s.Tasks()[0].Completed)
	})
}

func TestDeleteClearAndToggle(t *testing.T) {
	e, ctrl := newTestServer(t)
	for _, title := range []string{"a", "b", "c"} {
		do(e, http.MethodPost, "/api/tasks", `{"title":"`+title+`"}`)
	}

	rec := do(e, http.MethodDelete, "/api/tasks/id-1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(e, http.MethodDelete, "/api/tasks/id-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/api/tasks/toggle-all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]bool{"completed": true}, decode[map[string]bool](t, rec))

	rec = do(e, http.MethodPost, "/api/tasks/clear-completed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int{"removed": 2}, decode[map[string]int](t, rec))

	ctrl.Do(func(s *store.Store) { assert.Equal(t, 0, s.Len()) })

	rec = do(e, http.MethodPost, "/api/tasks/toggle-all", "")
	assert.Equal(t, map[string]bool{"completed": false}, decode[map[string]bool](t, rec))
}

func TestHealthz(t *testing.T) {
	e, _ := newTestServer(t)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/healthz", "").Code)
}

func TestSaveFailureIsReportedInHeader(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	s := store.New(brokenPersister{}, store.WithLogger(logger))
	e := New(NewController(s, logger))

	rec := do(e, http.MethodPost, "/api/tasks", `{"title":"x"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get("X-Tasklist-Warning"), "disk full")
	assert.NotEmpty(t, hook.AllEntries())
}

func TestSaveFailureOnEveryMutation(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	rec := &flakyPersister{}
	s := store.New(rec, store.WithIDFunc(task.Sequence("id")), store.WithLogger(logger))
	e := New(NewController(s, logger))

	do(e, http.MethodPost, "/api/tasks", `{"title":"a"}`)
	do(e, http.MethodPost, "/api/tasks", `{"title":"b"}`)
	rec.fail = true

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"update", http.MethodPatch, "/api/tasks/id-1", `{"completed":true}`, http.StatusOK},
		{"toggle all", http.MethodPost, "/api/tasks/toggle-all", "", http.StatusOK},
		{"clear completed", http.MethodPost, "/api/tasks/clear-completed", "", http.StatusOK},
		{"create", http.MethodPost, "/api/tasks", `{"title":"c"}`, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(e, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, resp.Code)
			assert.Contains(t, resp.Header().Get("X-Tasklist-Warning"), "disk full")
		})
	}

	resp := do(e, http.MethodDelete, "/api/tasks/id-3", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Contains(t, resp.Header().Get("X-Tasklist-Warning"), "disk full")

	rec.fail = false
	resp = do(e, http.MethodPost, "/api/tasks/toggle-all", "")
	assert.Empty(t, resp.Header().Get("X-Tasklist-Warning"))
}

// flakyPersister fails saves while fail is set.
type flakyPersister struct{ fail bool }

func (*flakyPersister) Load() []task.Task { return nil }

func (p *flakyPersister) Save([]task.Task) error {
	if p.fail {
		return errors.New("disk full")
	}
	return nil
}

type brokenPersister struct{}

func (brokenPersister) Load() []task.Task { return nil }
func (brokenPersister) Save([]task.Task) error { return errors.New("disk full") }

func TestControllerReload(t *testing.T) {
	kv := persist.NewMemory()
	adapter := persist.NewAdapter(kv)
	ctrl := NewController(store.New(adapter), nil)

	other := store.New(adapter)
	other.Add("from another process", "")

	ctrl.Reload()
	ctrl.Do(func(s *store.Store) { assert.Equal(t, 1, s.Len()) })
}
