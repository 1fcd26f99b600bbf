package appointment

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicbook/clinicbook/internal/platform/auth"
	"github.com/clinicbook/clinicbook/pkg/api"
	"github.com/clinicbook/clinicbook/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts appointment routes on the authenticated group.
func (h *Handler) RegisterRoutes(authed *echo.Group) {
	authed.POST("/appointments/appointment/book", h.Book, auth.RequireRole(auth.RolePatient))
	authed.PUT("/appointments/appointment/confirm/:id", h.Confirm, auth.RequireRole(auth.RoleDoctor))
	authed.PUT("/appointments/appointment/complete/:id", h.Complete, auth.RequireRole(auth.RoleDoctor))
	authed.PUT("/appointments/appointment/cancel/:id", h.Cancel, auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	authed.PUT("/appointments/appointment/payment/:id", h.Payment, auth.RequireRole(auth.RolePatient))
	authed.GET("/appointments/appointment/patient", h.PatientList, auth.RequireRole(auth.RolePatient))
	authed.GET("/appointments/appointment/doctor", h.DoctorList, auth.RequireRole(auth.RoleDoctor))
	authed.GET("/appointments/appointment/all", h.All, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) Book(c echo.Context) error {
	actor, err := callerOf(c)
	if err != nil {
		return err
	}

	doctorID, err := uuid.Parse(c.QueryParam("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctorId")
	}

	view, err := h.svc.Book(c.Request().Context(), actor.ID, doctorID, c.QueryParam("localDateTime"))
	if err != nil {
		switch {
		case errors.Is(err, ErrBadDateTime):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrDoctorNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, api.New("appointment booked", view))
}

func (h *Handler) Confirm(c echo.Context) error {
	return h.act(c, "appointment confirmed", h.svc.Confirm)
}

func (h *Handler) Complete(c echo.Context) error {
	return h.act(c, "appointment completed", h.svc.Complete)
}

func (h *Handler) Cancel(c echo.Context) error {
	return h.act(c, "appointment cancelled", h.svc.Cancel)
}

func (h *Handler) Payment(c echo.Context) error {
	return h.act(c, "payment updated", h.svc.MarkPaidOnline)
}

func (h *Handler) PatientList(c echo.Context) error {
	actor, err := callerOf(c)
	if err != nil {
		return err
	}

	views, err := h.svc.PatientAppointments(c.Request().Context(), actor.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if views == nil {
		views = []*View{}
	}
	return c.JSON(http.StatusOK, api.New("appointments found", views))
}

func (h *Handler) DoctorList(c echo.Context) error {
	actor, err := callerOf(c)
	if err != nil {
		return err
	}

	views, err := h.svc.DoctorAppointments(c.Request().Context(), actor.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if views == nil {
		views = []*View{}
	}
	return c.JSON(http.StatusOK, api.New("appointments found", views))
}

func (h *Handler) All(c echo.Context) error {
	p := pagination.FromContext(c)
	views, total, err := h.svc.AllAppointments(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if views == nil {
		views = []*View{}
	}
	return c.JSON(http.StatusOK, api.New("appointments found", pagination.NewResponse(views, total, p.Limit, p.Offset)))
}

// act runs one of the status-change operations, translating service errors
// to HTTP status codes uniformly.
func (h *Handler) act(c echo.Context, message string, fn func(ctx context.Context, actor Actor, id uuid.UUID) (*View, error)) error {
	actor, err := callerOf(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	view, err := fn(c.Request().Context(), actor, id)
	if err != nil {
		var badTransition *ErrBadTransition
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotParticipant):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.As(err, &badTransition):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, api.New(message, view))
}

func callerOf(c echo.Context) (Actor, error) {
	ctx := c.Request().Context()
	id, err := auth.SubjectID(ctx)
	if err != nil {
		return Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return Actor{ID: id, Role: auth.RoleFromContext(ctx)}, nil
}
