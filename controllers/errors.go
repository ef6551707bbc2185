package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"go-restaurant-ops/directory"
	"go-restaurant-ops/logging"
	"go-restaurant-ops/notifications"
	"go-restaurant-ops/orders"
	"go-restaurant-ops/pricing"
	"go-restaurant-ops/servicecalls"

	"github.com/gin-gonic/gin"
)

var (
	notFoundErrs = []error{
		orders.ErrOrderNotFound,
		orders.ErrRestaurantNotFound,
		orders.ErrTableNotFound,
		pricing.ErrItemNotFound,
		notifications.ErrNotFound,
		notifications.ErrUserNotFound,
		servicecalls.ErrNotFound,
		servicecalls.ErrTableNotFound,
		directory.ErrNotFound,
	}
	badRequestErrs = []error{
		pricing.ErrNoLines,
		pricing.ErrInvalidQuantity,
		pricing.ErrItemUnavailable,
		orders.ErrInvalidStatus,
		notifications.ErrUserIDRequired,
		servicecalls.ErrInvalidType,
		servicecalls.ErrInvalidStatus,
	}
	conflictErrs = []error{
		orders.ErrInvalidTransition,
		orders.ErrStatusConflict,
	}
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, orders.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, orders.ErrForbidden):
		return http.StatusForbidden
	case matchesAny(err, conflictErrs):
		return http.StatusConflict
	case matchesAny(err, badRequestErrs):
		return http.StatusBadRequest
	case matchesAny(err, notFoundErrs):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError writes the error response for err. Unexpected errors are
// logged and hidden from the caller.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context(), log).Error("request failed",
			slog.String("action", "request_failed"),
			slog.String("path", c.FullPath()),
			slog.Any("error", err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
