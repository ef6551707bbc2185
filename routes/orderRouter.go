package routes

import (
	"log/slog"

	controller "go-restaurant-ops/controllers"

	"github.com/gin-gonic/gin"
)

func OrderRoutes(incomingRoutes gin.IRoutes, svc controller.OrderService, log *slog.Logger) {
	incomingRoutes.POST("/orders", controller.CreateOrder(svc, log))
	incomingRoutes.GET("/orders/my", controller.GetMyOrders(svc, log))
	incomingRoutes.GET("/orders/restaurant/:restaurant_id", controller.GetRestaurantOrders(svc, log))
	incomingRoutes.GET("/orders/:order_id", controller.GetOrder(svc, log))
	incomingRoutes.PUT("/orders/:order_id/status", controller.UpdateOrderStatus(svc, log))
}
