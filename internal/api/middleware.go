package api

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const (
	bodyKey     = "body"
	maxBodySize = 100 * 1024 // 100 KiB
)

// RequestLogger logs the method of every request and passes it on.
func RequestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			logger.Info(c.Request().Method)
			return next(c)
		}
	}
}

// BodyParser decodes a JSON object body and stores it on the context for
// requestBody. Requests without a JSON body get a nil body. Malformed JSON,
// or JSON that is not an object, is rejected with a 400.
func BodyParser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || !isJSON(req.Header.Get(echo.HeaderContentType)) {
				return next(c)
			}

			raw, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize+1))
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body").SetInternal(err)
			}
			if len(raw) > maxBodySize {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
			}
			req.Body = io.NopCloser(bytes.NewReader(raw))
			if len(bytes.TrimSpace(raw)) == 0 {
				return next(c)
			}

			var body map[string]any
			if err := sonic.ConfigStd.Unmarshal(raw, &body); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
			}
			c.Set(bodyKey, body)
			return next(c)
		}
	}
}

// requestBody returns the body parsed by BodyParser, or nil.
func requestBody(c echo.Context) map[string]any {
	body, _ := c.Get(bodyKey).(map[string]any)
	return body
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == echo.MIMEApplicationJSON || strings.HasSuffix(mediaType, "+json")
}
