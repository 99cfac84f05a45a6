package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runRBAC(roles []string, required ...string) error {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if roles != nil {
		req = req.WithContext(context.WithValue(req.Context(), UserRolesKey, roles))
	}
	c := e.NewContext(req, httptest.NewRecorder())
	return RequireRole(required...)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
}

func TestRequireRole_Allowed(t *testing.T) {
	if err := runRBAC([]string{RoleClinician}, RoleBilling, RoleClinician); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	if err := runRBAC([]string{RoleAdmin}, RoleBilling); err != nil {
		t.Errorf("expected admin to pass, got %v", err)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	err := runRBAC([]string{RoleViewer}, RoleBilling)
	wantStatus(t, err, http.StatusForbidden)
	if he := err.(*echo.HTTPError); he.Message != "required role: billing" {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestRequireRole_NoRoles(t *testing.T) {
	wantStatus(t, runRBAC(nil, RoleRegistrar), http.StatusForbidden)
}
