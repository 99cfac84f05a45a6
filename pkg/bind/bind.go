// Package bind decodes request bodies, rejecting fields the target does not
// declare.
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// JSON decodes the request body into v. Unknown keys, trailing data and
// malformed JSON are 400s.
func JSON(c echo.Context, v interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return echo.NewHTTPError(http.StatusBadRequest, "request body is empty")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if dec.More() {
		return echo.NewHTTPError(http.StatusBadRequest, "request body must contain a single JSON object")
	}
	return nil
}

// IntParam parses a path parameter as an integer key.
func IntParam(c echo.Context, name string) (int, error) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return n, nil
}
