package billing

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
	// Read endpoints – billing, viewer
	read := api.Group("", auth.RequireRole(auth.RoleBilling, auth.RoleViewer))
	read.GET("/insurers", h.ListInsurers)
	read.GET("/insurers/:id", h.GetInsurer)
	read.GET("/claims", h.ListClaims)
	read.GET("/claims/:id", h.GetClaim)
	read.GET("/denials", h.ListDenials)
	read.GET("/denials/:id", h.GetDenial)

	// Write endpoints – billing
	write := api.Group("", auth.RequireRole(auth.RoleBilling))
	write.POST("/claims", h.CreateClaim)
	write.PUT("/claims/:id", h.UpdateClaim)
	write.DELETE("/claims/:id", h.DeleteClaim)
	write.POST("/claims/sync/:encounter_id", h.SyncClaim)
	write.POST("/denials", h.CreateDenial)
	write.PUT("/denials/:id", h.UpdateDenial)
	write.DELETE("/denials/:id", h.DeleteDenial)

	// Payer directory is admin only
	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/insurers", h.CreateInsurer)
	admin.PUT("/insurers/:id", h.UpdateInsurer)
	admin.DELETE("/insurers/:id", h.DeleteInsurer)
}

// -- Insurer Handlers --

func (h *Handler) CreateInsurer(c echo.Context) error {
	var i Insurer
	if err := bind.JSON(c, &i); err != nil {
		return err
	}
	if err := h.svc.CreateInsurer(c.Request().Context(), &i); err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": strconv.Itoa(i.ID)})
}

func (h *Handler) GetInsurer(c echo.Context) error {
	id, err := bind.IntParam(c, "id")
	if err != nil {
		return err
	}
	i, err := h.svc.GetInsurer(c.Request().Context(), id)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, i)
}

func (h *Handler) ListInsurers(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListInsurers(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateInsurer(c echo.Context) error {
	id, err := bind.IntParam(c, "id")
	if err != nil {
		return err
	}
	var p InsurerPatch
	if err := bind.JSON(c, &p); err != nil {
		return err
	}
	ok, err := h.svc.UpdateInsurer(c.Request().Context(), id, &p)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": ok})
}

func (h *Handler) DeleteInsurer(c echo.Context) error {
	id, err := bind.IntParam(c, "id")
	if err != nil {
		return err
	}
	ok, err := h.svc.DeleteInsurer(c.Request().Context(), id)
	if err != nil {
		return errs.HTTP(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "insurer not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Claim Handlers --

func (h *Handler) CreateClaim(c echo.Context) error {
	var cl Claim
	if err := bind.JSON(c, &cl); err != nil {
		return err
	}
	if err := h.svc.CreateClaim(c.Request().Context(), &cl); err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": cl.BillingID})
}

func (h *Handler) GetClaim(c echo.Context) error {
	cl, err := h.svc.GetClaim(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) ListClaims(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := ClaimFilter{
		EncounterID: c.QueryParam("encounter_id"),
		PatientID:   c.QueryParam("patient_id"),
		Status:      c.QueryParam("claim_status"),
	}
	items, total, err := h.svc.ListClaims(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateClaim(c echo.Context) error {
	var p ClaimPatch
	if err := bind.JSON(c, &p); err != nil {
		return err
	}
	ok, err := h.svc.UpdateClaim(c.Request().Context(), c.Param("id"), &p)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": ok})
}

func (h *Handler) DeleteClaim(c echo.Context) error {
	ok, err := h.svc.DeleteClaim(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "claim not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SyncClaim(c echo.Context) error {
	ok, err := h.svc.SyncClaim(c.Request().Context(), c.Param("encounter_id"))
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"synced": ok})
}

// -- Denial Handlers --

func (h *Handler) CreateDenial(c echo.Context) error {
	var d Denial
	if err := bind.JSON(c, &d); err != nil {
		return err
	}
	if err := h.svc.CreateDenial(c.Request().Context(), &d); err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": d.ID})
}

func (h *Handler) GetDenial(c echo.Context) error {
	d, err := h.svc.GetDenial(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDenials(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDenials(c.Request().Context(), c.QueryParam("claim_id"), pg.Limit, pg.Offset)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateDenial(c echo.Context) error {
	var p DenialPatch
	if err := bind.JSON(c, &p); err != nil {
		return err
	}
	ok, err := h.svc.UpdateDenial(c.Request().Context(), c.Param("id"), &p)
	if err != nil {
		return errs.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"updated": ok})
}

func (h *Handler) DeleteDenial(c echo.Context) error {
	ok, err := h.svc.DeleteDenial(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errs.HTTP(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "denial not found")
	}
	return c.NoContent(http.StatusNoContent)
}
