package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go-restaurant-ops/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the request and hands the connection to the hub.
// Clients pick their rooms with join_room messages.
func HandleWebSocket(hub *realtime.Hub, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", slog.String("action", "ws_upgrade_failed"), slog.Any("error", err))
			return
		}
		hub.Serve(conn)
	}
}

// HealthCheck reports whether the database answers a ping.
func HealthCheck(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
