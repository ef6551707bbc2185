package routes

import (
	"log/slog"

	controller "go-restaurant-ops/controllers"
	"go-restaurant-ops/middleware"

	"github.com/gin-gonic/gin"
)

// ServiceRequestRoutes registers service calls. Raising one needs no account;
// listing and resolving are staff only.
func ServiceRequestRoutes(incomingRoutes *gin.Engine, svc controller.ServiceRequestService, secret string, log *slog.Logger) {
	incomingRoutes.POST("/service-requests", middleware.OptionalAuthentication(secret), controller.CreateServiceRequest(svc, log))

	staff := incomingRoutes.Group("/service-requests", middleware.Authentication(secret))
	staff.GET("/restaurant/:restaurant_id", controller.GetRestaurantServiceRequests(svc, log))
	staff.PUT("/:service_request_id/resolve", controller.ResolveServiceRequest(svc, log))
}
