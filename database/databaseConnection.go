package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared by the stores.
const (
	OrderCollection          = "order"
	OrderItemCollection      = "orderItem"
	NotificationCollection   = "notification"
	ServiceRequestCollection = "serviceRequest"
	RestaurantCollection     = "restaurant"
	TableCollection          = "table"
	MenuItemCollection       = "menuItem"
	UserCollection           = "user"
)

const connectAttempts = 5

// Connect opens a mongo client and pings it, retrying with exponential backoff.
func Connect(ctx context.Context, uri string, log *slog.Logger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetRegistry(NewRegistry()).
		SetMaxPoolSize(25).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Minute)

	client, err := backoff.Retry(ctx, func() (*mongo.Client, error) {
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			// a malformed uri fails the same way every time
			return nil, backoff.Permanent(err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			log.Error("failed to connect to mongo, retrying",
				slog.String("action", "db_connection_failed"),
				slog.Any("error", err))
			return nil, err
		}
		return client, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(connectAttempts))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo after %d attempts: %w", connectAttempts, err)
	}
	return client, nil
}

// OpenCollection returns a handle on collectionName in databaseName.
func OpenCollection(client *mongo.Client, databaseName, collectionName string) *mongo.Collection {
	return client.Database(databaseName).Collection(collectionName)
}

// EnsureIndexes creates the indexes the order and notification queries rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		OrderCollection: {
			{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "restaurant_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		OrderItemCollection: {
			{Keys: bson.D{{Key: "order_id", Value: 1}}},
		},
		NotificationCollection: {
			{Keys: bson.D{{Key: "notification_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}}},
		},
		ServiceRequestCollection: {
			{Keys: bson.D{{Key: "service_request_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "restaurant_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
