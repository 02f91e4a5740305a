package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"task-service/pkg/task"
)

func (s *Server) handleTaskList(c echo.Context) error {
	tasks, err := s.tasks.List(c.Request().Context())
	if err != nil {
		return s.serverError(c, "list", err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleTaskCreate(c echo.Context) error {
	t, err := s.tasks.Create(c.Request().Context(), requestBody(c))
	if err != nil {
		return s.serverError(c, "create", err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) handleTaskGet(c echo.Context) error {
	t, err := s.tasks.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.storeError(c, "get", err)
	}
	return c.JSON(http.StatusOK, t)
}

// Update and delete look the task up first so a missing id always gets the
// same 404 as get, whatever the store reports on its own.
func (s *Server) handleTaskUpdate(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if _, err := s.tasks.Get(ctx, id); err != nil {
		return s.storeError(c, "update", err)
	}
	t, err := s.tasks.Update(ctx, id, requestBody(c))
	if err != nil {
		return s.storeError(c, "update", err)
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleTaskDelete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if _, err := s.tasks.Get(ctx, id); err != nil {
		return s.storeError(c, "delete", err)
	}
	t, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return s.storeError(c, "delete", err)
	}
	return c.JSON(http.StatusOK, t)
}

// storeError answers not-found with the fixed 404, anything else with 500.
func (s *Server) storeError(c echo.Context, op string, err error) error {
	if errors.Is(err, task.ErrNotFound) {
		return notFound(c)
	}
	return s.serverError(c, op, err)
}
