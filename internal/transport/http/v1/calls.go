package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

// ListCalls lists the live calls.
// GET /v1/calls?status=AWAITING_INPUT
func (h *Handler) ListCalls(c echo.Context) error {
	ctx := c.Request().Context()

	status := domain.CallStatus(strings.ToUpper(c.QueryParam("status")))
	switch status {
	case "", domain.CallStatusNew, domain.CallStatusRunning, domain.CallStatusAwaitingInput:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid status"})
	}

	calls, err := h.service.ListCalls(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"calls": calls,
	})
}

// GetCall returns one live call.
// GET /v1/calls/:call_id
func (h *Handler) GetCall(c echo.Context) error {
	ctx := c.Request().Context()
	callID := c.Param("call_id")

	call, err := h.service.GetCall(ctx, callID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if call == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "call not found"})
	}

	return c.JSON(http.StatusOK, call)
}

// DeleteCall ends a live call.
// DELETE /v1/calls/:call_id
func (h *Handler) DeleteCall(c echo.Context) error {
	callID := c.Param("call_id")
	if callID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "call_id is required"})
	}

	existed := h.service.DeleteCall(callID)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":      true,
		"existed": existed,
	})
}
