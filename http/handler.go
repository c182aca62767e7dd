package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Mamajin/Event-Reservation-sub000/entity"
	"github.com/Mamajin/Event-Reservation-sub000/organizing"
	"github.com/Mamajin/Event-Reservation-sub000/registration"
)

// headerKeyUserID carries the identity of the caller. Authentication happens
// in front of this service.
const headerKeyUserID = "User-ID"

const birthDateLayout = "2006-01-02"

type Registrar interface {
	Register(ctx context.Context, eventID, attendeeID string) (entity.Ticket, error)
	Cancel(ctx context.Context, ticketID, requesterID, reason string) (entity.Ticket, error)
	Ticket(ctx context.Context, ticketID string) (registration.TicketView, error)
}

type Organizer interface {
	RegisterAttendee(ctx context.Context, in organizing.AttendeeInput) (entity.Attendee, error)
	RegisterOrganizer(ctx context.Context, userID, name string) (entity.Organizer, error)
	CreateEvent(ctx context.Context, userID string, in organizing.EventInput) (entity.Event, error)
	UpdateEvent(ctx context.Context, userID, eventID string, in organizing.EventInput) (entity.Event, error)
	CancelEvent(ctx context.Context, userID, eventID string) (entity.Event, error)
	EventSummary(ctx context.Context, eventID string) (organizing.EventSummary, error)
}

type handler struct {
	registrar Registrar
	organizer Organizer
}

type attendeeRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
}

type organizerRequest struct {
	Name string `json:"name"`
}

type cancelTicketRequest struct {
	Reason string `json:"reason"`
}

func (h handler) CreateAttendee(c echo.Context) error {
	var request attendeeRequest
	if err := c.Bind(&request); err != nil {
		return bindError(err)
	}

	in := organizing.AttendeeInput{
		Email: request.Email,
		Name:  request.Name,
	}
	if request.BirthDate != "" {
		birthDate, err := time.Parse(birthDateLayout, request.BirthDate)
		if err != nil {
			return &echo.HTTPError{
				Code:     http.StatusBadRequest,
				Message:  "birth_date must be formatted as YYYY-MM-DD",
				Internal: fmt.Errorf("parsing birth date: %w", err),
			}
		}
		in.BirthDate = &birthDate
	}

	attendee, err := h.organizer.RegisterAttendee(c.Request().Context(), in)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, attendee)
}

func (h handler) CreateOrganizer(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var request organizerRequest
	if err := c.Bind(&request); err != nil {
		return bindError(err)
	}

	organizer, err := h.organizer.RegisterOrganizer(c.Request().Context(), userID, request.Name)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, organizer)
}

func (h handler) CreateEvent(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var request organizing.EventInput
	if err := c.Bind(&request); err != nil {
		return bindError(err)
	}

	e, err := h.organizer.CreateEvent(c.Request().Context(), userID, request)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, e)
}

func (h handler) GetEvent(c echo.Context) error {
	summary, err := h.organizer.EventSummary(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, summary)
}

func (h handler) UpdateEvent(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var request organizing.EventInput
	if err := c.Bind(&request); err != nil {
		return bindError(err)
	}

	e, err := h.organizer.UpdateEvent(c.Request().Context(), userID, c.Param("id"), request)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, e)
}

func (h handler) CancelEvent(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	e, err := h.organizer.CancelEvent(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, e)
}

func (h handler) RegisterTicket(c echo.Context) error {
	attendeeID, err := requireUser(c)
	if err != nil {
		return err
	}

	ticket, err := h.registrar.Register(c.Request().Context(), c.Param("id"), attendeeID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, ticket)
}

func (h handler) GetTicket(c echo.Context) error {
	view, err := h.registrar.Ticket(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

func (h handler) CancelTicket(c echo.Context) error {
	requesterID, err := requireUser(c)
	if err != nil {
		return err
	}

	var request cancelTicketRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&request); err != nil {
			return bindError(err)
		}
	}

	ticket, err := h.registrar.Cancel(c.Request().Context(), c.Param("id"), requesterID, request.Reason)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, ticket)
}

func requireUser(c echo.Context) (string, error) {
	userID := c.Request().Header.Get(headerKeyUserID)
	if userID == "" {
		return "", &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: "missing " + headerKeyUserID + " header",
		}
	}
	return userID, nil
}

func bindError(err error) error {
	return &echo.HTTPError{
		Code:     http.StatusBadRequest,
		Message:  "failed to parse request",
		Internal: fmt.Errorf("failed to bind request: %w", err),
	}
}

var errorCodes = []struct {
	err  error
	code int
}{
	{entity.ErrNotFound, http.StatusNotFound},

	{entity.ErrDomainNotAllowed, http.StatusForbidden},
	{entity.ErrSelfRegistrationForbidden, http.StatusForbidden},
	{entity.ErrForbidden, http.StatusForbidden},
	{entity.ErrNotOrganizer, http.StatusForbidden},

	{entity.ErrCapacityExceeded, http.StatusConflict},
	{entity.ErrAlreadyRegistered, http.StatusConflict},
	{entity.ErrAlreadyCancelled, http.StatusConflict},
	{entity.ErrEmailTaken, http.StatusConflict},

	{entity.ErrRegistrationWindowClosed, http.StatusUnprocessableEntity},
	{entity.ErrRegistrationNotOpen, http.StatusUnprocessableEntity},
	{entity.ErrAgeRequirementUnmet, http.StatusUnprocessableEntity},
	{entity.ErrInvalidEvent, http.StatusUnprocessableEntity},
	{entity.ErrInvalidAttendee, http.StatusUnprocessableEntity},

	{entity.ErrTicketNumberExhausted, http.StatusServiceUnavailable},
}

// domainError maps service errors to a status code. The message is the
// domain error's text, plus the status when registration is not open; wrapping
// detail stays in Internal for the logs.
func domainError(err error) error {
	var notOpen entity.RegistrationNotOpenError
	if errors.As(err, &notOpen) {
		return &echo.HTTPError{
			Code:     http.StatusUnprocessableEntity,
			Message:  notOpen.Error(),
			Internal: err,
		}
	}

	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return &echo.HTTPError{
				Code:     ec.code,
				Message:  ec.err.Error(),
				Internal: err,
			}
		}
	}

	return &echo.HTTPError{
		Code:     http.StatusInternalServerError,
		Message:  http.StatusText(http.StatusInternalServerError),
		Internal: err,
	}
}
