package routes

import (
	"context"
	"log/slog"

	controller "go-restaurant-ops/controllers"
	"go-restaurant-ops/realtime"

	"github.com/gin-gonic/gin"
)

func RealtimeRoutes(incomingRoutes *gin.Engine, hub *realtime.Hub, ping func(ctx context.Context) error, log *slog.Logger) {
	incomingRoutes.GET("/ws", controller.HandleWebSocket(hub, log))
	incomingRoutes.GET("/health", controller.HealthCheck(ping))
}
