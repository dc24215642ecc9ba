package devserver

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
)

// pathParam returns the unescaped value of a path parameter.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func idParam(c echo.Context, name string) (int64, error) {
	raw := pathParam(c, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fail(http.StatusBadRequest, "El valor '"+raw+"' no es válido para el parámetro '"+name+"'.")
	}
	return id, nil
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
