package identity

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medico/hospital/internal/platform/auth"
	"github.com/medico/hospital/internal/platform/errs"
	"github.com/medico/hospital/pkg/bind"
	"github.com/medico/hospital/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleRegistrar, auth.RoleClinician, auth.RoleBilling, auth.RoleViewer))
	read.GET("/patients", h.ListPatients)
	read.GET("/patients/:id", h.GetPatient)
	read.GET("/providers", h.ListProviders)
	read.GET("/providers/:id", h.GetProvider)
	read.GET("/department-heads", h.ListDepartmentHeads)
	read.GET("/department-heads/:id", h.GetDepartmentHead)

	// Registration desk
	reg := api.Group("", auth.RequireRole(auth.RoleRegistrar))
	reg.POST("/patients", h.CreatePatient)
	reg.PUT("/patients/:id", h.UpdatePatient)
	reg.DELETE("/patients/:id", h.DeletePatient)

	// Staff directory is admin only
	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/providers", h.CreateProvider)
	admin.PUT("/providers/:id", h.UpdateProvider)
	admin.DELETE("/providers/:id", h.DeleteProvider)
	admin.POST("/department-heads", h.CreateDepartmentHead)
	admin.PUT("/department-heads/:id", h.UpdateDepartmentHead)
	admin.DELETE("/department-heads/:id", h.DeleteDepartmentHead)
}

// -- Patient Handlers --

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := bind.JSON(c, &p); err != nil {
		return err
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": p.ID})
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.svc.GetPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var p PatientPatch
	if err := bind.JSON(c, &p); err != nil {
		return err
	}
	ok, err := h.svc.UpdatePatient(c.Request().Context(), c.Param("id"), &p)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": ok})
}

func (h *Handler) DeletePatient(c echo.Context) error {
	ok, err := h.svc.DeletePatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Provider Handlers --

func (h *Handler) CreateProvider(c echo.Context) error {
	var p Provider
	if err := bind.JSON(c, &p); err != nil {
		return err
	}
	if err := h.svc.CreateProvider(c.Request().Context(), &p); err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": p.ID})
}

func (h *Handler) GetProvider(c echo.Context) error {
	p, err := h.svc.GetProvider(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListProviders(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListProviders(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateProvider(c echo.Context) error {
	var p ProviderPatch
	if err := bind.JSON(c, &p); err != nil {
		return err
	}
	ok, err := h.svc.UpdateProvider(c.Request().Context(), c.Param("id"), &p)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": ok})
}

func (h *Handler) DeleteProvider(c echo.Context) error {
	ok, err := h.svc.DeleteProvider(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "provider not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Department Head Handlers --

func (h *Handler) CreateDepartmentHead(c echo.Context) error {
	var d DepartmentHead
	if err := bind.JSON(c, &d); err != nil {
		return err
	}
	if err := h.svc.CreateDepartmentHead(c.Request().Context(), &d); err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": strconv.Itoa(d.ID)})
}

func (h *Handler) GetDepartmentHead(c echo.Context) error {
	id, err := bind.IntParam(c, "id")
	if err != nil {
		return err
	}
	d, err := h.svc.GetDepartmentHead(c.Request().Context(), id)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDepartmentHeads(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDepartmentHeads(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateDepartmentHead(c echo.Context) error {
	id, err := bind.IntParam(c, "id")
	if err != nil {
		return err
	}
	var p DepartmentHeadPatch
	if err := bind.JSON(c, &p); err != nil {
		return err
	}
	ok, err := h.svc.UpdateDepartmentHead(c.Request().Context(), id, &p)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": ok})
}

func (h *Handler) DeleteDepartmentHead(c echo.Context) error {
	id, err := bind.IntParam(c, "id")
	if err != nil {
		return err
	}
	ok, err := h.svc.DeleteDepartmentHead(c.Request().Context(), id)
	if err != nil {
		return errs.HTTP(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "department head not found")
	}
	return c.NoContent(http.StatusNoContent)
}
