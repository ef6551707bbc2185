package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"go-restaurant-ops/middleware"
	"go-restaurant-ops/models"

	"github.com/gin-gonic/gin"
)

type NotificationLedger interface {
	List(ctx context.Context, userID string, offset, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, notificationID, userID string) error
	DeleteForUser(ctx context.Context, userID string) (int64, error)
}

type PushTokenStore interface {
	UpdatePushToken(ctx context.Context, userID, token string) error
}

type pushTokenUpdate struct {
	Push_token string `json:"push_token" validate:"required"`
}

func GetNotifications(ledger NotificationLedger, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		skip, err := queryInt(c, "skip", 0)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "skip must be an integer"})
			return
		}
		limit, err := queryInt(c, "limit", 100)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}

		notifications, err := ledger.List(ctx, c.GetString(middleware.KeyUID), skip, limit)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, notifications)
	}
}

func GetUnreadCount(ledger NotificationLedger, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		count, err := ledger.UnreadCount(ctx, c.GetString(middleware.KeyUID))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

func MarkNotificationRead(ledger NotificationLedger, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := ledger.MarkRead(ctx, c.Param("notification_id"), c.GetString(middleware.KeyUID)); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
	}
}

func MarkAllNotificationsRead(ledger NotificationLedger, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		changed, err := ledger.MarkAllRead(ctx, c.GetString(middleware.KeyUID))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": changed})
	}
}

func DeleteNotification(ledger NotificationLedger, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := ledger.Delete(ctx, c.Param("notification_id"), c.GetString(middleware.KeyUID)); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
	}
}

func DeleteAllNotifications(ledger NotificationLedger, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		deleted, err := ledger.DeleteForUser(ctx, c.GetString(middleware.KeyUID))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notifications deleted", "deleted": deleted})
	}
}

func UpdatePushToken(store PushTokenStore, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		var body pushTokenUpdate
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&body); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		if err := store.UpdatePushToken(ctx, c.GetString(middleware.KeyUID), body.Push_token); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Push token updated successfully"})
	}
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
