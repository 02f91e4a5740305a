package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"task-service/pkg/task"
)

// Server is the HTTP API server.
type Server struct {
	tasks task.Store
	log   *log.Logger
	echo  *echo.Echo
}

// New creates a Server that serves the task routes under basePath.
func New(tasks task.Store, logger *log.Logger, basePath string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}

	s := &Server{
		tasks: tasks,
		log:   logger,
		echo:  e,
	}
	e.HTTPErrorHandler = s.handleError

	// Order matters: every request is logged before its body is parsed or
	// routed, and handleError sees failures from all of them.
	e.Pre(RequestLogger(logger), BodyParser(), middleware.RemoveTrailingSlash())

	s.routes(basePath)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) routes(basePath string) {
	tasks := s.echo.Group(basePath)
	tasks.GET("", s.handleTaskList)
	tasks.POST("", s.handleTaskCreate)
	tasks.GET("/:id", s.handleTaskGet)
	tasks.PATCH("/:id", s.handleTaskUpdate)
	tasks.DELETE("/:id", s.handleTaskDelete)

	s.echo.GET("/health", s.handleHealth)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
