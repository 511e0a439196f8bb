package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches an admin socket to the hub and blocks until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, adminID string) {
	client := &Client{Hub: hub, Conn: c, AdminID: adminID, Send: make(chan []byte, 256)}
	select {
	case hub.register <- client:
	case <-hub.done:
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
