package otp

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the verification endpoints. They are
// deliberately unauthenticated: the caller does not have a token yet.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/otp/verify", h.Verify)
	api.POST("/otp/resend", h.Resend)
}

type verifyRequest struct {
	UserID uuid.UUID `json:"user_id"`
	OTP    string    `json:"otp"`
}

func (h *Handler) Verify(c echo.Context) error {
	var in verifyRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if in.UserID == uuid.Nil || in.OTP == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id and otp required")
	}

	switch err := h.svc.Verify(c.Request().Context(), in.UserID, in.OTP); {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{"message": "email verified"})
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "invalid user or otp")
	case errors.Is(err, ErrExpired):
		return echo.NewHTTPError(http.StatusBadRequest, "otp expired")
	case errors.Is(err, ErrMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, "incorrect otp")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "verification failed")
	}
}

type resendRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

func (h *Handler) Resend(c echo.Context) error {
	var in resendRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if in.UserID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id required")
	}

	switch err := h.svc.Resend(c.Request().Context(), in.UserID); {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{"message": "verification code sent"})
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "unknown user")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resend code")
	}
}
