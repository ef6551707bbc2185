package orders

import (
	"errors"
	"fmt"

	"go-restaurant-ops/models"
)

var (
	// ErrInvalidTransition indicates the requested status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrForbidden indicates the actor may not act on the restaurant's orders.
	ErrForbidden = errors.New("not allowed to manage this restaurant's orders")
	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrUnauthenticated indicates no actor was supplied.
	ErrUnauthenticated = errors.New("authentication required")
)

// Actor is the authenticated caller of an order operation.
type Actor struct {
	UserID       string
	Role         models.Role
	RestaurantID string
}

var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:   {models.StatusPreparing, models.StatusCancelled},
	models.StatusPreparing: {models.StatusReady, models.StatusCancelled},
	models.StatusReady:     {models.StatusCompleted},
}

// ParseStatus converts client input into a status.
func ParseStatus(raw string) (models.OrderStatus, error) {
	status, err := models.ParseOrderStatus(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return status, nil
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a status change.
func Transition(from, to models.OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if IsTerminal(from) {
		return fmt.Errorf("%w: %s is final", ErrInvalidTransition, from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.OrderStatus) bool {
	return len(transitions[status]) == 0
}

// Authorize checks that the actor owns the restaurant or is an employee
// assigned to it.
func Authorize(actor Actor, restaurant models.Restaurant) error {
	if actor.UserID == "" {
		return ErrUnauthenticated
	}
	if !actor.Role.Valid() {
		return ErrForbidden
	}
	switch actor.Role {
	case models.RoleOwner:
		if restaurant.Owner_id == actor.UserID {
			return nil
		}
	case models.RoleEmployee:
		if actor.RestaurantID != "" && actor.RestaurantID == restaurant.Restaurant_id {
			return nil
		}
	}
	return ErrForbidden
}
