package devserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// apiError is rendered as {"error": msg} or, with Fields, as a field→message map.
type apiError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *apiError) Error() string { return e.Message }

func fail(status int, msg string) error {
	return &apiError{Status: status, Message: msg}
}

func invalid(fields map[string]string) error {
	return &apiError{Status: http.StatusBadRequest, Message: "validation failed", Fields: fields}
}

func (s *Server) httpError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	var body any = map[string]string{"error": "Error interno del servidor."}

	var ae *apiError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ae):
		status = ae.Status
		if len(ae.Fields) > 0 {
			body = ae.Fields
		} else {
			body = map[string]string{"error": ae.Message}
		}
	case errors.As(err, &he):
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			body = map[string]string{"error": msg}
		} else {
			body = map[string]string{"error": http.StatusText(he.Code)}
		}
	default:
		s.log.WithError(err).WithField("path", c.Path()).Error("unhandled dev server error")
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}
