package accounts

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
	api.POST("/accounts/doctors", h.RegisterDoctor)
	api.POST("/accounts/patients", h.RegisterPatient)
	api.POST("/accounts/login", h.Login)
	api.POST("/accounts/refresh", h.Refresh)
	api.GET("/doctors", h.ListDoctors, auth.RequireAuth())
}

func (h *Handler) RegisterDoctor(c echo.Context) error {
	var in RegisterDoctorInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u, err := h.svc.RegisterDoctor(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return echo.NewHTTPError(http.StatusConflict, "account already exists")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var in RegisterPatientInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u, err := h.svc.RegisterPatient(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return echo.NewHTTPError(http.StatusConflict, "account already exists")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.svc.Login(c.Request().Context(), in)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, result)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, ErrRoleMismatch):
		return echo.NewHTTPError(http.StatusForbidden, "role mismatch")
	case errors.Is(err, ErrNotVerified):
		return c.JSON(http.StatusForbidden, map[string]interface{}{
			"error":    "account pending verification",
			"verified": false,
		})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}
}

func (h *Handler) Refresh(c echo.Context) error {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.svc.Refresh(c.Request().Context(), in.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	doctors, err := h.svc.ListDoctors(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list doctors")
	}
	if doctors == nil {
		doctors = []*DoctorSummary{}
	}
	return c.JSON(http.StatusOK, doctors)
}
