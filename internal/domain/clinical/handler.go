package clinical

import (
	"net/http"

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
	// Read endpoints – clinician, billing, viewer
	read := api.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleBilling, auth.RoleViewer))
	read.GET("/procedures", h.ListProcedures)
	read.GET("/procedures/:id", h.GetProcedure)
	read.GET("/medications", h.ListMedications)
	read.GET("/medications/:id", h.GetMedication)

	// Write endpoints – clinician
	write := api.Group("", auth.RequireRole(auth.RoleClinician))
	write.POST("/procedures", h.CreateProcedure)
	write.PUT("/procedures/:id", h.UpdateProcedure)
	write.DELETE("/procedures/:id", h.DeleteProcedure)
	write.POST("/medications", h.CreateMedication)
	write.PUT("/medications/:id", h.UpdateMedication)
	write.DELETE("/medications/:id", h.DeleteMedication)
}

// -- Procedure Handlers --

func (h *Handler) CreateProcedure(c echo.Context) error {
	var p Procedure
	if err := bind.JSON(c, &p); err != nil {
		return err
	}
	if err := h.svc.CreateProcedure(c.Request().Context(), &p); err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": p.ID})
}

func (h *Handler) GetProcedure(c echo.Context) error {
	p, err := h.svc.GetProcedure(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListProcedures(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListProcedures(c.Request().Context(), c.QueryParam("encounter_id"), pg.Limit, pg.Offset)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateProcedure(c echo.Context) error {
	var p ProcedurePatch
	if err := bind.JSON(c, &p); err != nil {
		return err
	}
	ok, err := h.svc.UpdateProcedure(c.Request().Context(), c.Param("id"), &p)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": ok})
}

func (h *Handler) DeleteProcedure(c echo.Context) error {
	ok, err := h.svc.DeleteProcedure(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "procedure not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Medication Handlers --

func (h *Handler) CreateMedication(c echo.Context) error {
	var m Medication
	if err := bind.JSON(c, &m); err != nil {
		return err
	}
	if err := h.svc.CreateMedication(c.Request().Context(), &m); err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": m.ID})
}

func (h *Handler) GetMedication(c echo.Context) error {
	m, err := h.svc.GetMedication(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListMedications(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListMedications(c.Request().Context(), c.QueryParam("encounter_id"), pg.Limit, pg.Offset)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateMedication(c echo.Context) error {
	var p MedicationPatch
	if err := bind.JSON(c, &p); err != nil {
		return err
	}
	ok, err := h.svc.UpdateMedication(c.Request().Context(), c.Param("id"), &p)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": ok})
}

func (h *Handler) DeleteMedication(c echo.Context) error {
	ok, err := h.svc.DeleteMedication(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "medication not found")
	}
	return c.NoContent(http.StatusNoContent)
}
