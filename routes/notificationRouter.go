package routes

import (
	"log/slog"

	controller "go-restaurant-ops/controllers"

	"github.com/gin-gonic/gin"
)

func NotificationRoutes(incomingRoutes gin.IRoutes, ledger controller.NotificationLedger, tokens controller.PushTokenStore, log *slog.Logger) {
	incomingRoutes.GET("/notifications", controller.GetNotifications(ledger, log))
	incomingRoutes.GET("/notifications/unread-count", controller.GetUnreadCount(ledger, log))
	incomingRoutes.PUT("/notifications/read-all", controller.MarkAllNotificationsRead(ledger, log))
	incomingRoutes.PUT("/notifications/:notification_id/read", controller.MarkNotificationRead(ledger, log))
	incomingRoutes.DELETE("/notifications", controller.DeleteAllNotifications(ledger, log))
	incomingRoutes.DELETE("/notifications/:notification_id", controller.DeleteNotification(ledger, log))
	incomingRoutes.POST("/notifications/token", controller.UpdatePushToken(tokens, log))
}
