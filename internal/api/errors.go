package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const (
	taskNotFoundMessage = "Task not found"
	fallbackMessage     = "something went wrong"
)

type messageResponse struct {
	Message string `json:"message"`
}

// errorMessage is the text a client sees for err.
func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return fallbackMessage
	}
	return err.Error()
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, messageResponse{Message: taskNotFoundMessage})
}

func (s *Server) serverError(c echo.Context, op string, err error) error {
	s.log.WithFields(log.Fields{"op": op, "error": err}).Error("task store failed")
	return c.JSON(http.StatusInternalServerError, messageResponse{Message: errorMessage(err)})
}

// handleError is the last stage of the pipeline. It answers for every error
// a handler or middleware returned instead of writing a response.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := errorMessage(err)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		msg = fmt.Sprint(he.Message)
		if he.Internal != nil {
			s.log.WithError(he.Internal).Debug(msg)
		}
	}
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).Error("unhandled request error")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, messageResponse{Message: msg})
	}
	if err != nil {
		s.log.WithError(err).Error("write error response")
	}
}
