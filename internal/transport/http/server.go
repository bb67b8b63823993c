// Package http provides the HTTP server of the router.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/gogo/yemot-router/internal/metrics"
	"github.com/xiaot623/gogo/yemot-router/internal/service"
	v1 "github.com/xiaot623/gogo/yemot-router/internal/transport/http/v1"
	"github.com/xiaot623/gogo/yemot-router/internal/ws"
)

// NewServer creates the HTTP server: the switch webhooks bound on svc, the
// admin API, the event stream and metrics. wsServer and m may be nil.
func NewServer(svc *service.Service, wsServer *ws.Server, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())

	// Handlers
	webhook := NewWebhookHandler(svc)
	v1Handler := v1.NewHandler(svc)

	// Register Routes
	webhook.RegisterRoutes(e)
	v1Handler.RegisterRoutes(e)
	if wsServer != nil {
		e.GET("/v1/events", wsServer.HandleWebSocket)
	}
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	return e
}
