package appointments

import (
	"errors"
	"net/http"
	"time"

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
	api.POST("/availability", h.CreateSlot, auth.RequireRole(auth.RoleDoctor))
	api.POST("/availability/split", h.SplitWindow, auth.RequireRole(auth.RoleDoctor))
	api.GET("/availability", h.ListFreeSlots, auth.RequireAuth())

	api.POST("/appointments", h.Book, auth.RequireRole(auth.RolePatient))
	api.GET("/appointments/doctor", h.ListForDoctor, auth.RequireRole(auth.RoleDoctor))
	api.GET("/appointments/patient", h.ListForPatient, auth.RequireRole(auth.RolePatient))
	api.PATCH("/appointments/:id/status", h.UpdateStatus, auth.RequireRole(auth.RoleDoctor))
}

type slotRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (h *Handler) CreateSlot(c echo.Context) error {
	id, _ := auth.IdentityFrom(c)

	var in slotRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	slot, err := h.svc.CreateSlot(c.Request().Context(), id.ID, in.Start, in.End)
	if err != nil {
		if errors.Is(err, ErrInvalidWindow) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid time window")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create slot")
	}
	return c.JSON(http.StatusCreated, slot)
}

type splitRequest struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
}

func (h *Handler) SplitWindow(c echo.Context) error {
	id, _ := auth.IdentityFrom(c)

	var in splitRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	slots, err := h.svc.SplitWindow(c.Request().Context(), id.ID, in.Start, in.End,
		time.Duration(in.DurationMinutes)*time.Minute)
	if err != nil {
		if errors.Is(err, ErrInvalidWindow) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid time window")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create slots")
	}
	return c.JSON(http.StatusCreated, slots)
}

func (h *Handler) ListFreeSlots(c echo.Context) error {
	doctorID := uuid.Nil
	if raw := c.QueryParam("doctor_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		doctorID = parsed
	}

	slots, err := h.svc.ListFreeSlots(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list slots")
	}
	if slots == nil {
		slots = []*Slot{}
	}
	return c.JSON(http.StatusOK, slots)
}

type bookRequest struct {
	SlotID uuid.UUID `json:"slot_id"`
}

type bookResponse struct {
	*Appointment
	Room string `json:"room"`
}

func (h *Handler) Book(c echo.Context) error {
	id, _ := auth.IdentityFrom(c)

	var in bookRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if in.SlotID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "slot_id is required")
	}

	appt, err := h.svc.Book(c.Request().Context(), id.ID, in.SlotID)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, bookResponse{Appointment: appt, Room: appt.RoomName()})
	case errors.Is(err, ErrSlotNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "slot not found")
	case errors.Is(err, ErrSlotTaken):
		return echo.NewHTTPError(http.StatusConflict, "slot already booked")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to book slot")
	}
}

func (h *Handler) ListForDoctor(c echo.Context) error {
	id, _ := auth.IdentityFrom(c)
	return h.list(c, func() ([]*Appointment, error) {
		return h.svc.ListForDoctor(c.Request().Context(), id.ID)
	})
}

func (h *Handler) ListForPatient(c echo.Context) error {
	id, _ := auth.IdentityFrom(c)
	return h.list(c, func() ([]*Appointment, error) {
		return h.svc.ListForPatient(c.Request().Context(), id.ID)
	})
}

func (h *Handler) list(c echo.Context, fetch func() ([]*Appointment, error)) error {
	appts, err := fetch()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list appointments")
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	return c.JSON(http.StatusOK, appts)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, _ := auth.IdentityFrom(c)

	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var in statusRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	status, err := ParseStatus(in.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	appt, err := h.svc.UpdateStatus(c.Request().Context(), id.ID, apptID, status)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, appt)
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	case errors.Is(err, ErrNotAppointment):
		return echo.NewHTTPError(http.StatusForbidden, "appointment belongs to another doctor")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update status")
	}
}
