package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
	"github.com/xiaot623/gogo/yemot-router/internal/service"
)

// WebhookHandler answers the switch requests with instructions.
type WebhookHandler struct {
	service *service.Service
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service *service.Service) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// RegisterRoutes binds every path with a call handler for GET and POST.
func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	for _, path := range h.service.Paths() {
		e.GET(path, h.Handle)
		e.POST(path, h.Handle)
	}
}

// Handle serves one switch request. Parameters are read from the query string
// and, for POST, the urlencoded body.
func (h *WebhookHandler) Handle(c echo.Context) error {
	values, err := c.FormParams()
	if err != nil {
		values = c.QueryParams()
	}
	params := domain.ParseParams(values)

	instruction, err := h.service.Serve(c.Request().Context(), c.Request().Method, c.Path(), params)
	switch {
	case err == nil:
		return c.String(http.StatusOK, instruction)
	case errors.Is(err, domain.ErrMissingCallID):
		return c.String(http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRouteNotFound):
		return c.String(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrCallBusy):
		return c.String(http.StatusConflict, err.Error())
	default:
		return c.String(http.StatusServiceUnavailable, err.Error())
	}
}
