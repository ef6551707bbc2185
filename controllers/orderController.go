package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go-restaurant-ops/middleware"
	"go-restaurant-ops/models"
	"go-restaurant-ops/orders"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
)

const requestTimeout = 15 * time.Second

var validate = validator.New()

type OrderService interface {
	CreateOrder(ctx context.Context, actor orders.Actor, input orders.CreateOrderInput) (models.Order, error)
	UpdateStatus(ctx context.Context, actor orders.Actor, orderID string, status models.OrderStatus) (models.Order, error)
	GetOrder(ctx context.Context, actor orders.Actor, orderID string) (models.Order, error)
	ListByCustomer(ctx context.Context, actor orders.Actor) ([]models.Order, error)
	ListByRestaurant(ctx context.Context, actor orders.Actor, restaurantID string) ([]models.Order, error)
}

type statusUpdate struct {
	Status string `json:"status" validate:"required"`
}

func actorFrom(c *gin.Context) orders.Actor {
	return orders.Actor{
		UserID:       c.GetString(middleware.KeyUID),
		Role:         models.Role(c.GetString(middleware.KeyRole)),
		RestaurantID: c.GetString(middleware.KeyRestaurantID),
	}
}

func CreateOrder(svc OrderService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		var input orders.CreateOrderInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&input); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		order, err := svc.CreateOrder(ctx, actorFrom(c), input)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func GetMyOrders(svc OrderService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		allOrders, err := svc.ListByCustomer(ctx, actorFrom(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(allOrders))
	}
}

func GetRestaurantOrders(svc OrderService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		allOrders, err := svc.ListByRestaurant(ctx, actorFrom(c), c.Param("restaurant_id"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(allOrders))
	}
}

func GetOrder(svc OrderService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		order, err := svc.GetOrder(ctx, actorFrom(c), c.Param("order_id"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func UpdateOrderStatus(svc OrderService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		// ?status=ready takes precedence over a JSON body.
		raw := c.Query("status")
		if raw == "" {
			var body statusUpdate
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if validationErr := validate.Struct(&body); validationErr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
				return
			}
			raw = body.Status
		}
		status, err := orders.ParseStatus(raw)
		if err != nil {
			respondError(c, log, err)
			return
		}

		order, err := svc.UpdateStatus(ctx, actorFrom(c), c.Param("order_id"), status)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
