// Package v1 provides the admin API of the router.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/yemot-router/internal/service"
)

// Handler handles admin HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers admin routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/calls", h.ListCalls)
	e.GET("/v1/calls/:call_id", h.GetCall)
	e.DELETE("/v1/calls/:call_id", h.DeleteCall)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"active_calls": h.service.ActiveCalls(),
	})
}
