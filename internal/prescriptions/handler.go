package prescriptions

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/telecare/telecare/internal/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/prescriptions", h.Create, auth.RequireRole(auth.RoleDoctor))
	api.GET("/prescriptions", h.List, auth.RequireAuth())
	api.GET("/prescriptions/:id", h.Get, auth.RequireAuth())
}

func (h *Handler) Create(c echo.Context) error {
	id, _ := auth.IdentityFrom(c)

	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.Create(c.Request().Context(), id.ID, in)
	if err != nil {
		if errors.Is(err, ErrEmptyText) {
			return echo.NewHTTPError(http.StatusBadRequest, "text is required")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) List(c echo.Context) error {
	id, _ := auth.IdentityFrom(c)

	list, err := h.svc.ListFor(c.Request().Context(), id, c.QueryParam("room_id"))
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "not available for this role")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list prescriptions")
	}
	if list == nil {
		list = []*Prescription{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) Get(c echo.Context) error {
	id, _ := auth.IdentityFrom(c)

	prescriptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := h.svc.GetFor(c.Request().Context(), id, prescriptionID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, p)
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "prescription not visible")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch prescription")
	}
}
