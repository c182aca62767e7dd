package http

import (
	"net/http"

	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/labstack/echo/v4"
)

var ErrServerClosed = http.ErrServerClosed

func NewRouter(registrar Registrar, organizer Organizer) *echo.Echo {
	server := commonHTTP.NewEcho()

	server.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	handler := handler{
		registrar: registrar,
		organizer: organizer,
	}

	server.POST("/attendees", handler.CreateAttendee)
	server.POST("/organizers", handler.CreateOrganizer)

	server.POST("/events", handler.CreateEvent)
	server.GET("/events/:id", handler.GetEvent)
	server.PUT("/events/:id", handler.UpdateEvent)
	server.POST("/events/:id/cancel", handler.CancelEvent)
	server.POST("/events/:id/tickets", handler.RegisterTicket)

	server.GET("/tickets/:id", handler.GetTicket)
	server.POST("/tickets/:id/cancel", handler.CancelTicket)

	return server
}
