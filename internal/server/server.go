// Package server exposes the task list over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/twiced-technology-gmbh/tasklist/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklist/internal/store"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
	"github.com/twiced-technology-gmbh/tasklist/internal/view"
)

const (
	maxBodySize     = 64 << 10
	shutdownTimeout = 5 * time.Second
)

// Controller serializes HTTP intents onto a single Store.
type Controller struct {
	mu    sync.Mutex
	store *store.Store
	log   log.FieldLogger
}

// NewController wraps s. The caller must not use s directly afterwards
// except through Do.
func NewController(s *store.Store, logger log.FieldLogger) *Controller {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Controller{store: s, log: logger}
}

// Do runs fn with exclusive access to the store.
func (c *Controller) Do(fn func(s *store.Store)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.store)
}

// Mutate runs fn like Do and returns the save error of any change fn made.
func (c *Controller) Mutate(fn func(s *store.Store)) (saveErr error) {
	c.Do(func(s *store.Store) {
		unsubscribe := s.Subscribe(func(e store.Event) {
			if e.Err != nil {
				saveErr = e.Err
			}
		})
		defer unsubscribe()
		fn(s)
	})
	return saveErr
}

// Reload re-reads the slot, for changes made by other processes.
func (c *Controller) Reload() {
	c.Do(func(s *store.Store) { s.Reload() })
}

type listResponse struct {
	Tasks []task.Task `json:"tasks"`
	Stats view.Stats  `json:"stats"`
}

type createRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// New returns an echo instance with all routes registered.
func New(ctrl *Controller) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			ctrl.log.WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			}).Info("request")
			return nil
		},
	}))
	Register(e, ctrl)
	return e
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, ctrl *Controller) {
	e.GET("/api/tasks", listTasks(ctrl))
	e.POST("/api/tasks", createTask(ctrl))
	e.GET("/api/tasks/:id", getTask(ctrl))
	e.PATCH("/api/tasks/:id", updateTask(ctrl))
	e.DELETE("/api/tasks/:id", deleteTask(ctrl))
	e.POST("/api/tasks/clear-completed", clearCompleted(ctrl))
	e.POST("/api/tasks/toggle-all", toggleAll(ctrl))
	e.GET("/healthz", healthz())
}

// Run serves until ctx is canceled, then shuts down gracefully.
func Run(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func listTasks(ctrl *Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		filter, err := view.ParseFilter(c.QueryParam("filter"))
		if err != nil {
			return writeError(c, http.StatusBadRequest, err)
		}
		st := view.NewState().WithFilter(filter).WithSearch(c.QueryParam("search"))

		var resp listResponse
		ctrl.Do(func(s *store.Store) {
			all := s.Tasks()
			resp = listResponse{Tasks: view.Project(all, st), Stats: view.Summarize(all)}
		})
		return c.JSON(http.StatusOK, resp)
	}
}

func getTask(ctrl *Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var (
			found task.Task
			err   error
		)
		id := c.Param("id")
		ctrl.Do(func(s *store.Store) {
			var ok bool
			if found, ok = s.Get(id); !ok {
				err = task.NotFound(id)
			}
		})
		if err != nil {
			return writeError(c, statusFor(err), err)
		}
		return c.JSON(http.StatusOK, found)
	}
}

func createTask(ctrl *Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createRequest
		if err := decodeBody(c, &req); err != nil {
			return writeError(c, http.StatusBadRequest, err)
		}
		if err := task.ValidateTitle(req.Title); err != nil {
			return writeError(c, http.StatusUnprocessableEntity, err)
		}

		var created task.Task
		saveErr := ctrl.Mutate(func(s *store.Store) {
			created, _ = s.Add(req.Title, req.Notes)
		})
		warnSave(c, ctrl, saveErr)
		return c.JSON(http.StatusCreated, created)
	}
}

func updateTask(ctrl *Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var patch task.Patch
		if err := decodeBody(c, &patch); err != nil {
			return writeError(c, http.StatusBadRequest, err)
		}
		if patch.Empty() {
			return writeError(c, http.StatusUnprocessableEntity,
				clierr.New(clierr.NoChanges, "no fields to update"))
		}
		if !patch.Valid() {
			return writeError(c, http.StatusUnprocessableEntity, task.ValidateTitle(""))
		}

		var (
			updated task.Task
			err     error
		)
		id := c.Param("id")
		saveErr := ctrl.Mutate(func(s *store.Store) {
			if !s.Update(id, patch) {
				err = task.NotFound(id)
				return
			}
			updated, _ = s.Get(id)
		})
		if err != nil {
			return writeError(c, statusFor(err), err)
		}
		warnSave(c, ctrl, saveErr)
		return c.JSON(http.StatusOK, updated)
	}
}

func deleteTask(ctrl *Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var err error
		id := c.Param("id")
		saveErr := ctrl.Mutate(func(s *store.Store) {
			if !s.Delete(id) {
				err = task.NotFound(id)
			}
		})
		if err != nil {
			return writeError(c, statusFor(err), err)
		}
		warnSave(c, ctrl, saveErr)
		return c.NoContent(http.StatusNoContent)
	}
}

func clearCompleted(ctrl *Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var removed int
		saveErr := ctrl.Mutate(func(s *store.Store) { removed = s.ClearCompleted() })
		warnSave(c, ctrl, saveErr)
		return c.JSON(http.StatusOK, map[string]int{"removed": removed})
	}
}

func toggleAll(ctrl *Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var completed bool
		saveErr := ctrl.Mutate(func(s *store.Store) { completed = s.ToggleAll() })
		warnSave(c, ctrl, saveErr)
		return c.JSON(http.StatusOK, map[string]bool{"completed": completed})
	}
}

func decodeBody(c echo.Context, v any) error {
	dec := sonic.ConfigStd.NewDecoder(io.LimitReader(c.Request().Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return clierr.New(clierr.InvalidInput, "invalid body")
	}
	return nil
}

// warnSave reports a failed save in a header; the change itself stands.
func warnSave(c echo.Context, ctrl *Controller, err error) {
	if err == nil {
		return
	}
	ctrl.log.WithError(err).Warn("request applied but not persisted")
	c.Response().Header().Set("X-Tasklist-Warning", "not persisted: "+err.Error())
}

func statusFor(err error) int {
	var cliErr *clierr.Error
	if !errors.As(err, &cliErr) {
		return http.StatusInternalServerError
	}
	switch cliErr.Code {
	case clierr.TaskNotFound:
		return http.StatusNotFound
	case clierr.AmbiguousID:
		return http.StatusConflict
	case clierr.InvalidTaskID, clierr.InvalidInput, clierr.InvalidFilter:
		return http.StatusBadRequest
	case clierr.EmptyTitle, clierr.NoChanges:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, status int, err error) error {
	resp := errorResponse{Error: err.Error(), Code: clierr.InternalError}
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		resp.Code = cliErr.Code
	}
	return c.JSON(status, resp)
}
