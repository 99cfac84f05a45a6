package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medico/hospital/internal/platform/errs"
)

func newTestHandler() (*Handler, *fixture, *echo.Echo) {
	f := newFixture()
	return NewHandler(f.svc), f, echo.New()
}

func jsonRequest(method, body string) *http.Request {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestHandler_CreatePatient(t *testing.T) {
	h, _, e := newTestHandler()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost,
		`{"first_name":"Ada","last_name":"Byron","dob":"1990-12-10","gender":"F"}`), rec)

	if err := h.CreatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["id"] != "PAT000001" {
		t.Errorf("id = %q", body["id"])
	}
}

func TestHandler_CreatePatient_MissingField(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(jsonRequest(http.MethodPost, `{"first_name":"Ada"}`), httptest.NewRecorder())
	if code := httpCode(t, h.CreatePatient(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_UpdatePatient_UnknownField(t *testing.T) {
	h, f, e := newTestHandler()
	p := validPatient()
	_ = f.svc.CreatePatient(context.Background(), p)

	c := e.NewContext(jsonRequest(http.MethodPut, `{"nickname":"Ada"}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(p.ID)
	if code := httpCode(t, h.UpdatePatient(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_UpdatePatient(t *testing.T) {
	h, f, e := newTestHandler()
	p := validPatient()
	_ = f.svc.CreatePatient(context.Background(), p)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, `{"first_name":"Augusta"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID)
	if err := h.UpdatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"updated":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandler_UpdatePatient_EmptyBody(t *testing.T) {
	h, f, e := newTestHandler()
	p := validPatient()
	_ = f.svc.CreatePatient(context.Background(), p)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, `{}`), rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID)
	if err := h.UpdatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"updated":false`) {
		t.Errorf("got %d %s, want 200 with updated false", rec.Code, rec.Body.String())
	}
}

func TestHandler_GetPatient_NotFound(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("PAT404")
	if code := httpCode(t, h.GetPatient(c)); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestHandler_DeletePatient(t *testing.T) {
	h, f, e := newTestHandler()
	p := validPatient()
	_ = f.svc.CreatePatient(context.Background(), p)

	f.guard.err = &errs.ConflictError{Relation: "encounters", Count: 1, Message: "Cannot delete patient"}
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(p.ID)
	if code := httpCode(t, h.DeletePatient(c)); code != http.StatusConflict {
		t.Errorf("expected 409, got %d", code)
	}

	f.guard.err = nil
	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID)
	if err := h.DeletePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(p.ID)
	if code := httpCode(t, h.DeletePatient(c)); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestHandler_CreateDepartmentHead(t *testing.T) {
	h, _, e := newTestHandler()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, `{"department":"Cardiology","head_provider_id":"PRO000001"}`), rec)
	if err := h.CreateDepartmentHead(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"id":"1"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandler_GetDepartmentHead_BadID(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")
	if code := httpCode(t, h.GetDepartmentHead(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_ListProviders(t *testing.T) {
	h, f, e := newTestHandler()
	_ = f.svc.CreateProvider(context.Background(), &Provider{Name: "A", Department: "D", Specialty: "S", NPI: "1"})
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?limit=10", nil), rec)
	if err := h.ListProviders(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, _, e := newTestHandler()
	h.RegisterRoutes(e.Group("/api/v1"))

	routePaths := make(map[string]bool)
	for _, r := range e.Routes() {
		routePaths[r.Method+":"+r.Path] = true
	}
	expected := []string{
		"POST:/api/v1/patients",
		"GET:/api/v1/patients/:id",
		"PUT:/api/v1/patients/:id",
		"DELETE:/api/v1/providers/:id",
		"POST:/api/v1/department-heads",
		"PUT:/api/v1/department-heads/:id",
	}
	for _, path := range expected {
		if !routePaths[path] {
			t.Errorf("missing expected route: %s", path)
		}
	}
}
