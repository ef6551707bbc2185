package orders

import (
	"context"
	"errors"

	"go-restaurant-ops/models"
)

var (
	// ErrOrderNotFound indicates no order has the requested ID.
	ErrOrderNotFound = errors.New("order not found")
	// ErrStatusConflict indicates the order's status changed underneath a
	// compare-and-set.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// Store persists orders and their items.
type Store interface {
	// CreateOrder writes the order header and all items atomically.
	CreateOrder(ctx context.Context, order models.Order, items []models.OrderItem) error
	GetOrder(ctx context.Context, orderID string) (models.Order, error)
	// CompareAndSetStatus moves the order to `to` only if its status is still `from`.
	CompareAndSetStatus(ctx context.Context, orderID string, from, to models.OrderStatus) (models.Order, error)
	ListByCustomer(ctx context.Context, userID string) ([]models.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error)
}
