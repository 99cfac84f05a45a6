package bind

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type patch struct {
	Name *string `json:"name"`
}

func newContext(body string) echo.Context {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"known field", `{"name":"x"}`, false},
		{"unknown field", `{"name":"x","age":3}`, true},
		{"empty body", ``, true},
		{"malformed", `{"name":`, true},
		{"trailing object", `{"name":"x"}{"name":"y"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p patch
			err := JSON(newContext(tt.body), &p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %v", err)
			}
		})
	}
}

func TestIntParam(t *testing.T) {
	c := newContext("")
	c.SetParamNames("id")
	c.SetParamValues("42")
	if n, err := IntParam(c, "id"); err != nil || n != 42 {
		t.Errorf("got %d, %v", n, err)
	}
	c.SetParamValues("abc")
	if _, err := IntParam(c, "id"); err == nil {
		t.Error("expected error for non-integer id")
	}
}
