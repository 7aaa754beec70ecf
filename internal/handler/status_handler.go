package handler

import (
	"context"

	"offline-chat-be/internal/pkg/logger"
	internalWS "offline-chat-be/internal/websocket"
	"offline-chat-be/pkg/events"
	pktNats "offline-chat-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const statusDurableName = "status-stream"

// StatusHandler streams generation and data events to browsers over /ws.
type StatusHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewStatusHandler(hub *internalWS.Hub, log logger.ILogger) *StatusHandler {
	return &StatusHandler{
		hub:    hub,
		logger: log,
	}
}

// Forward is a NATS event handler that relays broker events to the hub.
func (h *StatusHandler) Forward(ctx context.Context, event events.Event) error {
	return h.hub.Publish(ctx, event)
}

// Listen relays every chat event from the broker until the bus is closed.
func (h *StatusHandler) Listen(ctx context.Context, bus *pktNats.Bus) error {
	return bus.Subscribe(ctx, pktNats.SubjectPrefix+".>", statusDurableName, h.Forward)
}

// ServeWs upgrades the request. Browsers pass their client id as a query
// parameter; anonymous connections get a fresh one.
func (h *StatusHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	clientID := c.Query("client_id")
	if clientID == "" {
		clientID = uuid.New().String()
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("STATUS", "Starting websocket session", map[string]interface{}{"client_id": clientID})
		h.hub.Serve(conn, clientID)
		h.logger.Info("STATUS", "Websocket session ended", map[string]interface{}{"client_id": clientID})
	})(c)
}

func (h *StatusHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
