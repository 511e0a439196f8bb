package handler

import (
	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/pkg/serverutils"
	"regdesk-be/internal/service"
	internalWS "regdesk-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type NotificationHandler struct {
	service service.INotificationService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

func NewNotificationHandler(service service.INotificationService, hub *internalWS.Hub, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		hub:     hub,
		logger:  log,
	}
}

// ServeWs upgrades an authenticated admin to the alert socket. AdminMiddleware
// runs first and accepts the token from ?token= for browsers.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	adminID, _ := c.Locals(serverutils.LocalUserID).(string)
	if adminID == "" {
		adminID = serverutils.Actor(c)
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("NotificationHandler", "Starting WebSocket session", map[string]interface{}{"admin_id": adminID})
		internalWS.ServeWs(h.hub, conn, adminID)
		h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"admin_id": adminID})
	})(c)
}

func (h *NotificationHandler) GetSummary(c *fiber.Ctx) error {
	return c.JSON(serverutils.SuccessResponse("Expiry alert summary", h.service.Summary(c.UserContext())))
}

func (h *NotificationHandler) Acknowledge(c *fiber.Ctx) error {
	res := h.service.Acknowledge(c.UserContext(), serverutils.Actor(c))
	return c.JSON(serverutils.SuccessResponse("Expiry alerts acknowledged", res))
}

// Open returns the combined list even after acknowledgement
func (h *NotificationHandler) Open(c *fiber.Ctx) error {
	return c.JSON(serverutils.SuccessResponse("Expiry alerts", h.service.Open(c.UserContext())))
}

// RegisterRoutes mounts the REST routes on the admin group and the socket on api.
func (h *NotificationHandler) RegisterRoutes(api fiber.Router, admin fiber.Router, auth fiber.Handler) {
	notif := admin.Group("/notifications")
	notif.Get("/summary", h.GetSummary)
	notif.Post("/acknowledge", h.Acknowledge)
	notif.Get("/open", h.Open)

	api.Get("/ws", auth, h.ServeWs)
}
