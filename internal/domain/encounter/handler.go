package encounter

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
	read := api.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleRegistrar, auth.RoleBilling, auth.RoleViewer))
	read.GET("/encounters", h.ListEncounters)
	read.GET("/encounters/:id", h.GetEncounter)
	read.GET("/diagnoses", h.ListDiagnoses)
	read.GET("/diagnoses/:id", h.GetDiagnosis)
	read.GET("/lab-tests", h.ListLabTests)
	read.GET("/lab-tests/:id", h.GetLabTest)

	write := api.Group("", auth.RequireRole(auth.RoleClinician))
	write.POST("/encounters", h.CreateEncounter)
	write.PUT("/encounters/:id", h.UpdateEncounter)
	write.DELETE("/encounters/:id", h.DeleteEncounter)
	write.POST("/diagnoses", h.CreateDiagnosis)
	write.PUT("/diagnoses/:id", h.UpdateDiagnosis)
	write.DELETE("/diagnoses/:id", h.DeleteDiagnosis)
	write.POST("/lab-tests", h.CreateLabTest)
	write.PUT("/lab-tests/:id", h.UpdateLabTest)
	write.DELETE("/lab-tests/:id", h.DeleteLabTest)
}

func requireEncounterFilter(c echo.Context) (string, error) {
	id := c.QueryParam("encounter_id")
	if id == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "encounter_id query parameter is required")
	}
	return id, nil
}

// -- Encounter Handlers --

func (h *Handler) CreateEncounter(c echo.Context) error {
	var e Encounter
	if err := bind.JSON(c, &e); err != nil {
		return err
	}
	if err := h.svc.CreateEncounter(c.Request().Context(), &e); err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": e.ID})
}

func (h *Handler) GetEncounter(c echo.Context) error {
	e, err := h.svc.GetEncounter(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ListEncounters(c echo.Context) error {
	pg := pagination.FromContext(c)
	var (
		items []*Encounter
		total int
		err   error
	)
	if pid := c.QueryParam("patient_id"); pid != "" {
		items, total, err = h.svc.ListEncountersByPatient(c.Request().Context(), pid, pg.Limit, pg.Offset)
	} else {
		items, total, err = h.svc.ListEncounters(c.Request().Context(), pg.Limit, pg.Offset)
	}
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateEncounter(c echo.Context) error {
	var p EncounterPatch
	if err := bind.JSON(c, &p); err != nil {
		return err
	}
	ok, err := h.svc.UpdateEncounter(c.Request().Context(), c.Param("id"), &p)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": ok})
}

func (h *Handler) DeleteEncounter(c echo.Context) error {
	ok, err := h.svc.DeleteEncounter(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "encounter not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Diagnosis Handlers --

func (h *Handler) CreateDiagnosis(c echo.Context) error {
	var d Diagnosis
	if err := bind.JSON(c, &d); err != nil {
		return err
	}
	if err := h.svc.CreateDiagnosis(c.Request().Context(), &d); err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": d.ID})
}

func (h *Handler) GetDiagnosis(c echo.Context) error {
	d, err := h.svc.GetDiagnosis(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDiagnoses(c echo.Context) error {
	encID, err := requireEncounterFilter(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDiagnoses(c.Request().Context(), encID, pg.Limit, pg.Offset)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateDiagnosis(c echo.Context) error {
	var p DiagnosisPatch
	if err := bind.JSON(c, &p); err != nil {
		return err
	}
	ok, err := h.svc.UpdateDiagnosis(c.Request().Context(), c.Param("id"), &p)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": ok})
}

func (h *Handler) DeleteDiagnosis(c echo.Context) error {
	ok, err := h.svc.DeleteDiagnosis(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "diagnosis not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Lab Test Handlers --

func (h *Handler) CreateLabTest(c echo.Context) error {
	var l LabTest
	if err := bind.JSON(c, &l); err != nil {
		return err
	}
	if err := h.svc.CreateLabTest(c.Request().Context(), &l); err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": l.ID})
}

func (h *Handler) GetLabTest(c echo.Context) error {
	l, err := h.svc.GetLabTest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) ListLabTests(c echo.Context) error {
	encID, err := requireEncounterFilter(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListLabTests(c.Request().Context(), encID, pg.Limit, pg.Offset)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateLabTest(c echo.Context) error {
	var p LabTestPatch
	if err := bind.JSON(c, &p); err != nil {
		return err
	}
	ok, err := h.svc.UpdateLabTest(c.Request().Context(), c.Param("id"), &p)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": ok})
}

func (h *Handler) DeleteLabTest(c echo.Context) error {
	ok, err := h.svc.DeleteLabTest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "lab test not found")
	}
	return c.NoContent(http.StatusNoContent)
}
