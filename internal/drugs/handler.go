package drugs

import (
	"errors"
	"net/http"

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
	api.GET("/drugs", h.Search, auth.RequireRole(auth.RoleDoctor))
}

func (h *Handler) Search(c echo.Context) error {
	matches, err := h.svc.Search(c.Request().Context(), c.QueryParam("name"))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, matches)
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "drug not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "drug search failed")
	}
}
