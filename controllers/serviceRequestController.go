package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"go-restaurant-ops/models"
	"go-restaurant-ops/orders"
	"go-restaurant-ops/servicecalls"

	"github.com/gin-gonic/gin"
)

type ServiceRequestService interface {
	Create(ctx context.Context, actor orders.Actor, input servicecalls.CreateInput) (models.ServiceRequest, error)
	ListByRestaurant(ctx context.Context, actor orders.Actor, restaurantID, status string) ([]models.ServiceRequest, error)
	Resolve(ctx context.Context, actor orders.Actor, id string) (models.ServiceRequest, error)
}

func CreateServiceRequest(svc ServiceRequestService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		var input servicecalls.CreateInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&input); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		request, err := svc.Create(ctx, actorFrom(c), input)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, request)
	}
}

func GetRestaurantServiceRequests(svc ServiceRequestService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		requests, err := svc.ListByRestaurant(ctx, actorFrom(c), c.Param("restaurant_id"), c.Query("status"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, requests)
	}
}

func ResolveServiceRequest(svc ServiceRequestService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		request, err := svc.Resolve(ctx, actorFrom(c), c.Param("service_request_id"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, request)
	}
}
